package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hail/internal/domain"
	"hail/internal/repository"
)

// RideService owns the ride lifecycle. Every state transition is validated
// against the caller's identity and the ride's current status before any
// mutation; fan-out happens only after the mutation commits.
type RideService struct {
	tx       repository.TxManager
	rideRepo repository.RideRepository
	bidRepo  repository.BidRepository
	userRepo repository.UserRepository
	billing  *BillingService
	otp      OTPGenerator
	notifier Notifier
}

// NewRideService creates a new RideService.
func NewRideService(
	tx repository.TxManager,
	rideRepo repository.RideRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	billing *BillingService,
	otp OTPGenerator,
	notifier Notifier,
) *RideService {
	return &RideService{
		tx:       tx,
		rideRepo: rideRepo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		billing:  billing,
		otp:      otp,
		notifier: notifier,
	}
}

// CreateRequestInput contains the parameters for posting a ride request.
type CreateRequestInput struct {
	RiderID        string
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	DropAddress    string
	DropLat        float64
	DropLng        float64
	TargetDriverID string // Optional: direct booking
}

// CreateRequest posts a new ride request in PENDING and dispatches it either
// directly to the targeted driver or to the broadcast set of online drivers.
func (s *RideService) CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.RideRequest, error) {
	if !isValidLatitude(in.PickupLat) || !isValidLongitude(in.PickupLng) {
		return nil, ErrInvalidPickupLocation
	}
	if !isValidLatitude(in.DropLat) || !isValidLongitude(in.DropLng) {
		return nil, ErrInvalidDropLocation
	}

	if in.TargetDriverID != "" {
		target, err := s.userRepo.GetByID(ctx, in.TargetDriverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidTargetDriver
			}
			return nil, err
		}
		if !target.IsDriver() {
			return nil, ErrInvalidTargetDriver
		}
	}

	now := time.Now()
	ride := &domain.RideRequest{
		ID:             uuid.New().String(),
		RiderID:        in.RiderID,
		TargetDriverID: in.TargetDriverID,
		PickupAddress:  in.PickupAddress,
		PickupLat:      in.PickupLat,
		PickupLng:      in.PickupLng,
		DropAddress:    in.DropAddress,
		DropLat:        in.DropLat,
		DropLng:        in.DropLng,
		Status:         domain.RideStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"ride_id":        ride.ID,
		"rider_id":       ride.RiderID,
		"pickup_address": ride.PickupAddress,
		"drop_address":   ride.DropAddress,
	}
	if ride.TargetDriverID != "" {
		s.notifier.ToUser(ctx, ride.TargetDriverID, EventRideRequested, payload)
	} else {
		s.notifier.ToOnlineDrivers(ctx, EventRideRequested, payload)
	}

	return ride, nil
}

// AcceptBidInput contains the parameters for accepting a bid.
type AcceptBidInput struct {
	RiderID string
	BidID   string
}

// AcceptBid confirms the ride on the chosen bid. The accepted bid, the
// rejection of every competing bid, the driver assignment, the negotiated
// fare, and the fresh boarding code all commit as one transaction; a
// concurrent accept on the same ride serializes on the ride row and the
// loser observes the committed CONFIRMED status.
func (s *RideService) AcceptBid(ctx context.Context, in AcceptBidInput) (*domain.RideRequest, error) {
	chosen, err := s.bidRepo.GetByID(ctx, in.BidID)
	if err != nil {
		return nil, err
	}

	otp, err := s.otp.Generate()
	if err != nil {
		return nil, err
	}

	var ride *domain.RideRequest
	var rejectedDrivers []string

	err = s.tx.InTx(ctx, func(tx repository.TxRepos) error {
		ride, err = tx.Rides().GetByIDForUpdate(ctx, chosen.RideID)
		if err != nil {
			return err
		}

		if ride.RiderID != in.RiderID {
			return ErrForbidden
		}
		if ride.Status.Terminal() {
			return ErrAlreadyTerminal
		}
		if !ride.Status.Open() {
			return ErrAlreadyConfirmed
		}

		// Re-read under the ride lock; the bid may have been revised.
		bid, err := tx.Bids().GetByID(ctx, in.BidID)
		if err != nil {
			return err
		}

		now := time.Now()
		bid.Status = domain.BidStatusAccepted
		bid.UpdatedAt = now
		if err := tx.Bids().Update(ctx, bid); err != nil {
			return err
		}

		rejectedDrivers, err = tx.Bids().RejectOthers(ctx, ride.ID, bid.ID)
		if err != nil {
			return err
		}

		ride.Status = domain.RideStatusConfirmed
		ride.AssignedDriverID = bid.DriverID
		ride.FinalFare = bid.EffectiveFare()
		ride.OTP = otp
		ride.OTPVerified = false
		ride.UpdatedAt = now
		return tx.Rides().Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ToUser(ctx, ride.AssignedDriverID, EventBidAccepted, map[string]any{
		"ride_id":    ride.ID,
		"bid_id":     in.BidID,
		"final_fare": ride.FinalFare,
	})
	for _, driverID := range rejectedDrivers {
		s.notifier.ToUser(ctx, driverID, EventBidRejected, map[string]any{
			"ride_id": ride.ID,
		})
	}

	return ride, nil
}

// RejectBidInput contains the parameters for rejecting a single bid.
type RejectBidInput struct {
	RiderID string
	BidID   string
}

// RejectBid marks one bid rejected. Ride status is unchanged.
func (s *RideService) RejectBid(ctx context.Context, in RejectBidInput) (*domain.RideBid, error) {
	bid, err := s.bidRepo.GetByID(ctx, in.BidID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, bid.RideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != in.RiderID {
		return nil, ErrForbidden
	}

	bid.Status = domain.BidStatusRejected
	bid.UpdatedAt = time.Now()
	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, err
	}

	s.notifier.ToUser(ctx, bid.DriverID, EventBidRejected, map[string]any{
		"ride_id": bid.RideID,
		"bid_id":  bid.ID,
	})

	return bid, nil
}

// StartRideInput contains the parameters for the boarding handshake.
type StartRideInput struct {
	DriverID string
	RideID   string
	OTP      string
}

// StartRide verifies the boarding code and moves the ride to ONGOING.
// A wrong code leaves the ride untouched.
func (s *RideService) StartRide(ctx context.Context, in StartRideInput) (*domain.RideRequest, error) {
	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}

	if ride.AssignedDriverID != in.DriverID {
		return nil, ErrForbidden
	}
	if ride.Status != domain.RideStatusConfirmed {
		return nil, ErrInvalidState
	}
	if !VerifyOTP(in.OTP, ride.OTP) {
		return nil, ErrInvalidOtp
	}

	now := time.Now()
	ride.Status = domain.RideStatusOngoing
	ride.OTPVerified = true
	ride.BoardedAt = now
	ride.UpdatedAt = now
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.notifier.ToRide(ctx, ride.ID, EventRideStarted, map[string]any{
		"ride_id":   ride.ID,
		"driver_id": ride.AssignedDriverID,
	})

	return ride, nil
}

// UpdateLocationInput contains the parameters for a live position update.
type UpdateLocationInput struct {
	DriverID string
	RideID   string
	Lat      float64
	Lng      float64
}

// UpdateLocation persists the vehicle's live coordinates and re-broadcasts
// them to the ride's watchers. High-frequency path: a single-column write
// with no transaction, so unrelated rides never serialize behind it.
func (s *RideService) UpdateLocation(ctx context.Context, in UpdateLocationInput) error {
	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return err
	}
	if ride.AssignedDriverID != in.DriverID {
		return ErrForbidden
	}

	if err := s.rideRepo.UpdateVehicleLocation(ctx, in.RideID, in.Lat, in.Lng); err != nil {
		return err
	}

	s.notifier.ToRide(ctx, in.RideID, EventLocationUpdate, map[string]any{
		"ride_id": in.RideID,
		"lat":     in.Lat,
		"lng":     in.Lng,
	})

	return nil
}

// CompleteRideInput contains the parameters for completing a ride.
type CompleteRideInput struct {
	DriverID string
	RideID   string
	Distance float64
}

// CompleteRide finishes an ongoing ride and produces its bill. Re-invocation
// after success fails ErrInvalidState; the bill is never duplicated. The bill
// is written before the terminal status, so a failure in between leaves the
// ride ONGOING and the retry picks up the existing bill.
func (s *RideService) CompleteRide(ctx context.Context, in CompleteRideInput) (*domain.RideRequest, *domain.Bill, error) {
	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, nil, err
	}

	if ride.AssignedDriverID != in.DriverID {
		return nil, nil, ErrForbidden
	}
	if ride.Status != domain.RideStatusOngoing {
		return nil, nil, ErrInvalidState
	}

	now := time.Now()
	bill, err := s.billing.Finalize(ctx, ride, in.Distance, now)
	if errors.Is(err, repository.ErrConflict) {
		bill, err = s.billing.GetByRide(ctx, ride.ID)
	}
	if err != nil {
		return nil, nil, err
	}

	ride.Status = domain.RideStatusCompleted
	ride.Distance = in.Distance
	ride.UpdatedAt = now
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, nil, err
	}

	s.notifier.ToRide(ctx, ride.ID, EventRideCompleted, map[string]any{
		"ride_id":          ride.ID,
		"fare":             bill.Fare,
		"distance":         bill.Distance,
		"duration_minutes": bill.DurationMinutes,
	})

	return ride, bill, nil
}

// CancelRideInput contains the parameters for cancelling a ride.
type CancelRideInput struct {
	CallerID string
	RideID   string
}

// CancelRide moves a non-terminal ride to CANCELLED. Either the rider or
// the assigned driver may cancel.
func (s *RideService) CancelRide(ctx context.Context, in CancelRideInput) (*domain.RideRequest, error) {
	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}

	var cancelledBy domain.Role
	switch in.CallerID {
	case ride.RiderID:
		cancelledBy = domain.RoleRider
	case ride.AssignedDriverID:
		cancelledBy = domain.RoleDriver
	default:
		return nil, ErrForbidden
	}

	if ride.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	ride.Status = domain.RideStatusCancelled
	ride.CancelledBy = cancelledBy
	ride.UpdatedAt = time.Now()
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.notifier.ToRide(ctx, ride.ID, EventRideCancelled, map[string]any{
		"ride_id":      ride.ID,
		"cancelled_by": string(cancelledBy),
	})

	return ride, nil
}

// GetRide retrieves a single ride.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.RideRequest, error) {
	return s.rideRepo.GetByID(ctx, rideID)
}

// ListOpen lists rides currently open for bidding.
func (s *RideService) ListOpen(ctx context.Context) ([]*domain.RideRequest, error) {
	return s.rideRepo.GetOpen(ctx)
}

// ListForUser lists rides where the user participates as rider or driver.
func (s *RideService) ListForUser(ctx context.Context, userID string) ([]*domain.RideRequest, error) {
	return s.rideRepo.GetByUser(ctx, userID)
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
