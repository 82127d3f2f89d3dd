package tests

import (
	"context"
	"errors"
	"testing"

	"hail/internal/domain"
	"hail/internal/service"
)

// ──────────────────────────────────────────────
// 4. RIDE LIFECYCLE
// ──────────────────────────────────────────────

func confirmedRide(t *testing.T) (*service.RideService, *MockRideRepository, *MockBillRepository, *MockNotifier) {
	t.Helper()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.RideRequest{
		ID:               "ride-1",
		RiderID:          "rider-1",
		Status:           domain.RideStatusConfirmed,
		AssignedDriverID: "driver-1",
		FinalFare:        250,
		OTP:              "123456",
	})

	billRepo := NewMockBillRepository()
	notifier := NewMockNotifier()
	svc := newRideService(rideRepo, NewMockBidRepository(), NewMockUserRepository(), billRepo, notifier)
	return svc, rideRepo, billRepo, notifier
}

func TestStartRide_CorrectCodeBoardsRide(t *testing.T) {
	t.Parallel()

	svc, rideRepo, _, notifier := confirmedRide(t)

	ride, err := svc.StartRide(context.Background(), service.StartRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		OTP:      "123456",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusOngoing {
		t.Errorf("expected status %s, got %s", domain.RideStatusOngoing, ride.Status)
	}
	if !ride.OTPVerified {
		t.Error("expected boarding code marked verified")
	}
	if ride.BoardedAt.IsZero() {
		t.Error("expected boarding time recorded")
	}
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusOngoing {
		t.Errorf("expected persisted status %s, got %s", domain.RideStatusOngoing, got)
	}

	events := notifier.Events(service.EventRideStarted)
	if len(events) != 1 || events[0].Kind != "ride" || events[0].Target != "ride-1" {
		t.Fatalf("expected one ride-started event to the ride channel, got %+v", events)
	}
}

func TestStartRide_WrongCodeLeavesRideUntouched(t *testing.T) {
	t.Parallel()

	svc, rideRepo, _, _ := confirmedRide(t)

	_, err := svc.StartRide(context.Background(), service.StartRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		OTP:      "000000",
	})
	if !errors.Is(err, service.ErrInvalidOtp) {
		t.Fatalf("expected ErrInvalidOtp, got %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusConfirmed {
		t.Errorf("expected status unchanged, got %s", ride.Status)
	}
	if ride.OTPVerified {
		t.Error("expected boarding code still unverified")
	}
}

func TestStartRide_OnlyAssignedDriver(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)

	_, err := svc.StartRide(context.Background(), service.StartRideInput{
		DriverID: "driver-2",
		RideID:   "ride-1",
		OTP:      "123456",
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestStartRide_RequiresConfirmedStatus(t *testing.T) {
	t.Parallel()

	svc, rideRepo, _, _ := confirmedRide(t)

	pending := rideRepo.GetRide("ride-1")
	pending.Status = domain.RideStatusPending
	rideRepo.AddRide(pending)

	_, err := svc.StartRide(context.Background(), service.StartRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		OTP:      "123456",
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestUpdateLocation_PersistsAndBroadcasts(t *testing.T) {
	t.Parallel()

	svc, rideRepo, _, notifier := confirmedRide(t)

	err := svc.UpdateLocation(context.Background(), service.UpdateLocationInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Lat:      12.98,
		Lng:      77.60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.VehicleLat != 12.98 || ride.VehicleLng != 77.60 {
		t.Errorf("expected vehicle at (12.98, 77.60), got (%v, %v)", ride.VehicleLat, ride.VehicleLng)
	}
	if rideRepo.VehicleLocationCallCount != 1 {
		t.Errorf("expected the dedicated location write, got %d calls", rideRepo.VehicleLocationCallCount)
	}
	// The location write never rewrites the full row.
	if rideRepo.UpdateCallCount != 0 {
		t.Errorf("expected no full-row update, got %d", rideRepo.UpdateCallCount)
	}

	events := notifier.Events(service.EventLocationUpdate)
	if len(events) != 1 || events[0].Target != "ride-1" {
		t.Fatalf("expected one location-update event to the ride channel, got %+v", events)
	}
}

func TestUpdateLocation_OnlyAssignedDriver(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)

	err := svc.UpdateLocation(context.Background(), service.UpdateLocationInput{
		DriverID: "driver-2",
		RideID:   "ride-1",
		Lat:      12.98,
		Lng:      77.60,
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCompleteRide_ProducesSingleBill(t *testing.T) {
	t.Parallel()

	svc, rideRepo, billRepo, notifier := confirmedRide(t)
	ctx := context.Background()

	if _, err := svc.StartRide(ctx, service.StartRideInput{
		DriverID: "driver-1", RideID: "ride-1", OTP: "123456",
	}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	ride, bill, err := svc.CompleteRide(ctx, service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusCompleted, ride.Status)
	}
	if bill.Fare != 250 {
		t.Errorf("expected the negotiated fare 250, got %v", bill.Fare)
	}
	if bill.Distance != 12.4 {
		t.Errorf("expected distance 12.4, got %v", bill.Distance)
	}
	if billRepo.CountBills() != 1 {
		t.Errorf("expected 1 bill, got %d", billRepo.CountBills())
	}

	// Completing again must fail and must not produce a second bill.
	_, _, err = svc.CompleteRide(ctx, service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on re-complete, got %v", err)
	}
	if billRepo.CountBills() != 1 {
		t.Errorf("expected still 1 bill, got %d", billRepo.CountBills())
	}

	events := notifier.Events(service.EventRideCompleted)
	if len(events) != 1 || events[0].Target != "ride-1" {
		t.Fatalf("expected one ride-completed event, got %+v", events)
	}
	if got := rideRepo.GetRide("ride-1").Distance; got != 12.4 {
		t.Errorf("expected persisted distance 12.4, got %v", got)
	}
}

func TestCompleteRide_FailedBillInsertLeavesRideRetryable(t *testing.T) {
	t.Parallel()

	svc, rideRepo, billRepo, _ := confirmedRide(t)
	ctx := context.Background()

	if _, err := svc.StartRide(ctx, service.StartRideInput{
		DriverID: "driver-1", RideID: "ride-1", OTP: "123456",
	}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	billRepo.CreateError = errors.New("store down")
	_, _, err := svc.CompleteRide(ctx, service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// The ride must not go terminal without its bill.
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusOngoing {
		t.Fatalf("expected ride still %s, got %s", domain.RideStatusOngoing, got)
	}

	billRepo.CreateError = nil
	ride, bill, err := svc.CompleteRide(ctx, service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusCompleted, ride.Status)
	}
	if bill == nil || billRepo.CountBills() != 1 {
		t.Errorf("expected exactly one bill after retry, got %d", billRepo.CountBills())
	}
}

func TestCompleteRide_ExistingBillToleratedOnRetry(t *testing.T) {
	t.Parallel()

	svc, _, billRepo, _ := confirmedRide(t)
	ctx := context.Background()

	if _, err := svc.StartRide(ctx, service.StartRideInput{
		DriverID: "driver-1", RideID: "ride-1", OTP: "123456",
	}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// A bill from an earlier attempt whose status write never landed.
	if err := billRepo.Create(ctx, &domain.Bill{
		ID:     "bill-1",
		RideID: "ride-1",
		Fare:   250,
	}); err != nil {
		t.Fatalf("seed bill failed: %v", err)
	}

	ride, bill, err := svc.CompleteRide(ctx, service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.RideStatusCompleted, ride.Status)
	}
	if bill.ID != "bill-1" {
		t.Errorf("expected the existing bill to be reused, got %s", bill.ID)
	}
	if billRepo.CountBills() != 1 {
		t.Errorf("expected 1 bill, got %d", billRepo.CountBills())
	}
}

func TestCompleteRide_RequiresOngoingStatus(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)

	_, _, err := svc.CompleteRide(context.Background(), service.CompleteRideInput{
		DriverID: "driver-1",
		RideID:   "ride-1",
		Distance: 12.4,
	})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancelRide_ByRiderRecordsRole(t *testing.T) {
	t.Parallel()

	svc, rideRepo, _, notifier := confirmedRide(t)

	ride, err := svc.CancelRide(context.Background(), service.CancelRideInput{
		CallerID: "rider-1",
		RideID:   "ride-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected status %s, got %s", domain.RideStatusCancelled, ride.Status)
	}
	if ride.CancelledBy != domain.RoleRider {
		t.Errorf("expected cancelled by %s, got %s", domain.RoleRider, ride.CancelledBy)
	}
	if got := rideRepo.GetRide("ride-1").Status; got != domain.RideStatusCancelled {
		t.Errorf("expected persisted status %s, got %s", domain.RideStatusCancelled, got)
	}

	events := notifier.Events(service.EventRideCancelled)
	if len(events) != 1 {
		t.Fatalf("expected one ride-cancelled event, got %d", len(events))
	}
}

func TestCancelRide_ByAssignedDriverRecordsRole(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)

	ride, err := svc.CancelRide(context.Background(), service.CancelRideInput{
		CallerID: "driver-1",
		RideID:   "ride-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.CancelledBy != domain.RoleDriver {
		t.Errorf("expected cancelled by %s, got %s", domain.RoleDriver, ride.CancelledBy)
	}
}

func TestCancelRide_StrangerForbidden(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)

	_, err := svc.CancelRide(context.Background(), service.CancelRideInput{
		CallerID: "driver-2",
		RideID:   "ride-1",
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCancelRide_TerminalRideFails(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := confirmedRide(t)
	ctx := context.Background()

	if _, err := svc.CancelRide(ctx, service.CancelRideInput{CallerID: "rider-1", RideID: "ride-1"}); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := svc.CancelRide(ctx, service.CancelRideInput{CallerID: "rider-1", RideID: "ride-1"})
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Errorf("expected ErrAlreadyTerminal, got %v", err)
	}
}
