package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hail/internal/domain"
	"hail/internal/repository"
)

// BidService owns creation and mutation of bids against a ride.
type BidService struct {
	tx       repository.TxManager
	rideRepo repository.RideRepository
	bidRepo  repository.BidRepository
	notifier Notifier
}

// NewBidService creates a new BidService.
func NewBidService(
	tx repository.TxManager,
	rideRepo repository.RideRepository,
	bidRepo repository.BidRepository,
	notifier Notifier,
) *BidService {
	return &BidService{
		tx:       tx,
		rideRepo: rideRepo,
		bidRepo:  bidRepo,
		notifier: notifier,
	}
}

// SubmitBidRequest contains the parameters for submitting a bid.
type SubmitBidRequest struct {
	DriverID    string
	RideID      string
	OfferedFare float64
}

// SubmitBid records a driver's fare offer on an open ride. A driver holds at
// most one bid per ride: a re-submission overwrites the existing bid in
// place, resetting its status and clearing any counter-offer. Moves the ride
// into NEGOTIATING if it was PENDING.
func (s *BidService) SubmitBid(ctx context.Context, req SubmitBidRequest) (*domain.RideBid, error) {
	if req.OfferedFare <= 0 {
		return nil, ErrInvalidFare
	}

	var bid *domain.RideBid
	var riderID string

	err := s.tx.InTx(ctx, func(tx repository.TxRepos) error {
		ride, err := tx.Rides().GetByIDForUpdate(ctx, req.RideID)
		if err != nil {
			return err
		}

		if ride.RiderID == req.DriverID {
			return ErrForbidden
		}
		if !ride.Status.Open() {
			return ErrRideNotOpen
		}

		now := time.Now()

		existing, err := tx.Bids().GetByRideAndDriver(ctx, req.RideID, req.DriverID)
		switch {
		case err == nil:
			// Overwrite in place: the driver is revising an open offer.
			existing.OfferedFare = req.OfferedFare
			existing.CounterFare = 0
			existing.Status = domain.BidStatusPending
			existing.UpdatedAt = now
			if err := tx.Bids().Update(ctx, existing); err != nil {
				return err
			}
			bid = existing
		case errors.Is(err, repository.ErrNotFound):
			bid = &domain.RideBid{
				ID:          uuid.New().String(),
				RideID:      req.RideID,
				DriverID:    req.DriverID,
				OfferedFare: req.OfferedFare,
				Status:      domain.BidStatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Bids().Create(ctx, bid); err != nil {
				return err
			}
		default:
			return err
		}

		if ride.Status == domain.RideStatusPending {
			ride.Status = domain.RideStatusNegotiating
			ride.UpdatedAt = now
			if err := tx.Rides().Update(ctx, ride); err != nil {
				return err
			}
		}

		riderID = ride.RiderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ToUser(ctx, riderID, EventReceiveBid, map[string]any{
		"ride_id":      bid.RideID,
		"bid_id":       bid.ID,
		"driver_id":    bid.DriverID,
		"offered_fare": bid.OfferedFare,
	})

	return bid, nil
}

// CounterBidRequest contains the parameters for counter-offering a bid.
type CounterBidRequest struct {
	RiderID     string
	BidID       string
	CounterFare float64
}

// CounterBid records the rider's alternate fare on an existing bid and
// notifies the bidding driver. Ride status is unchanged.
func (s *BidService) CounterBid(ctx context.Context, req CounterBidRequest) (*domain.RideBid, error) {
	if req.CounterFare <= 0 {
		return nil, ErrInvalidFare
	}

	bid, err := s.bidRepo.GetByID(ctx, req.BidID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, bid.RideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != req.RiderID {
		return nil, ErrForbidden
	}

	bid.CounterFare = req.CounterFare
	bid.Status = domain.BidStatusCountered
	bid.UpdatedAt = time.Now()

	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, err
	}

	s.notifier.ToUser(ctx, bid.DriverID, EventCounterOffer, map[string]any{
		"ride_id":      bid.RideID,
		"bid_id":       bid.ID,
		"counter_fare": bid.CounterFare,
	})

	return bid, nil
}

// ListBids returns all bids on a ride, most recent first. Only the ride's
// rider may list them.
func (s *BidService) ListBids(ctx context.Context, riderID, rideID string) ([]*domain.RideBid, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, ErrForbidden
	}

	return s.bidRepo.GetByRide(ctx, rideID)
}
