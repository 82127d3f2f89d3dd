package repository

import (
	"context"

	"hail/internal/domain"
)

// BidRepository defines the persistence operations for ride bids.
type BidRepository interface {
	// Create persists a new bid.
	Create(ctx context.Context, bid *domain.RideBid) error

	// GetByID retrieves a bid by ID.
	GetByID(ctx context.Context, id string) (*domain.RideBid, error)

	// GetByRideAndDriver retrieves the single bid a driver holds on a ride,
	// or ErrNotFound when the driver has not bid.
	GetByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideBid, error)

	// GetByRide retrieves all bids on a ride, most recent first.
	GetByRide(ctx context.Context, rideID string) ([]*domain.RideBid, error)

	// Update updates an existing bid.
	Update(ctx context.Context, bid *domain.RideBid) error

	// RejectOthers marks every bid on the ride except keepBidID as rejected
	// and returns the driver IDs of the rejected bids.
	RejectOthers(ctx context.Context, rideID, keepBidID string) ([]string, error)
}
