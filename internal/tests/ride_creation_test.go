package tests

import (
	"context"
	"errors"
	"testing"

	"hail/internal/domain"
	"hail/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE REQUEST CREATION
// ──────────────────────────────────────────────

func newRideService(
	rideRepo *MockRideRepository,
	bidRepo *MockBidRepository,
	userRepo *MockUserRepository,
	billRepo *MockBillRepository,
	notifier *MockNotifier,
) *service.RideService {
	return service.NewRideService(
		NewMockTxManager(rideRepo, bidRepo),
		rideRepo,
		bidRepo,
		userRepo,
		service.NewBillingService(billRepo),
		&StubOTP{Code: "123456"},
		notifier,
	)
}

func TestCreateRequest_BroadcastsToOnlineDrivers(t *testing.T) {
	t.Parallel()

	rideRepo := NewMockRideRepository()
	notifier := NewMockNotifier()
	svc := newRideService(rideRepo, NewMockBidRepository(), NewMockUserRepository(), NewMockBillRepository(), notifier)

	ride, err := svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:       "rider-1",
		PickupAddress: "12 Hill Road",
		PickupLat:     12.97,
		PickupLng:     77.59,
		DropAddress:   "Airport",
		DropLat:       13.19,
		DropLng:       77.70,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected status %s, got %s", domain.RideStatusPending, ride.Status)
	}
	if ride.ID == "" {
		t.Error("expected a generated ride ID")
	}
	if rideRepo.GetRide(ride.ID) == nil {
		t.Error("ride not persisted")
	}

	events := notifier.Events(service.EventRideRequested)
	if len(events) != 1 {
		t.Fatalf("expected 1 ride-requested event, got %d", len(events))
	}
	if events[0].Kind != "drivers" {
		t.Errorf("expected broadcast to online drivers, got %q", events[0].Kind)
	}
}

func TestCreateRequest_DirectBookingTargetsOneDriver(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "driver-1", Role: domain.RoleDriver})

	notifier := NewMockNotifier()
	svc := newRideService(NewMockRideRepository(), NewMockBidRepository(), userRepo, NewMockBillRepository(), notifier)

	ride, err := svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:        "rider-1",
		PickupLat:      12.97,
		PickupLng:      77.59,
		DropLat:        13.19,
		DropLng:        77.70,
		TargetDriverID: "driver-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.TargetDriverID != "driver-1" {
		t.Errorf("expected target driver to persist, got %q", ride.TargetDriverID)
	}

	events := notifier.Events(service.EventRideRequested)
	if len(events) != 1 {
		t.Fatalf("expected 1 ride-requested event, got %d", len(events))
	}
	if events[0].Kind != "user" || events[0].Target != "driver-1" {
		t.Errorf("expected direct delivery to driver-1, got kind=%q target=%q", events[0].Kind, events[0].Target)
	}
}

func TestCreateRequest_RejectsUnknownTargetDriver(t *testing.T) {
	t.Parallel()

	svc := newRideService(NewMockRideRepository(), NewMockBidRepository(), NewMockUserRepository(), NewMockBillRepository(), NewMockNotifier())

	_, err := svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:        "rider-1",
		PickupLat:      12.97,
		PickupLng:      77.59,
		DropLat:        13.19,
		DropLng:        77.70,
		TargetDriverID: "ghost",
	})
	if !errors.Is(err, service.ErrInvalidTargetDriver) {
		t.Errorf("expected ErrInvalidTargetDriver, got %v", err)
	}
}

func TestCreateRequest_RejectsRiderAsTargetDriver(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "rider-2", Role: domain.RoleRider})

	svc := newRideService(NewMockRideRepository(), NewMockBidRepository(), userRepo, NewMockBillRepository(), NewMockNotifier())

	_, err := svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:        "rider-1",
		PickupLat:      12.97,
		PickupLng:      77.59,
		DropLat:        13.19,
		DropLng:        77.70,
		TargetDriverID: "rider-2",
	})
	if !errors.Is(err, service.ErrInvalidTargetDriver) {
		t.Errorf("expected ErrInvalidTargetDriver, got %v", err)
	}
}

func TestCreateRequest_ValidatesCoordinates(t *testing.T) {
	t.Parallel()

	svc := newRideService(NewMockRideRepository(), NewMockBidRepository(), NewMockUserRepository(), NewMockBillRepository(), NewMockNotifier())

	_, err := svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:   "rider-1",
		PickupLat: 91, // out of range
		PickupLng: 77.59,
		DropLat:   13.19,
		DropLng:   77.70,
	})
	if !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}

	_, err = svc.CreateRequest(context.Background(), service.CreateRequestInput{
		RiderID:   "rider-1",
		PickupLat: 12.97,
		PickupLng: 77.59,
		DropLat:   13.19,
		DropLng:   -181, // out of range
	})
	if !errors.Is(err, service.ErrInvalidDropLocation) {
		t.Errorf("expected ErrInvalidDropLocation, got %v", err)
	}
}
