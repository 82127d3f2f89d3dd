package repository

import (
	"context"

	"hail/internal/domain"
)

// RideRepository defines the persistence operations for ride requests.
type RideRepository interface {
	// Create persists a new ride request.
	Create(ctx context.Context, ride *domain.RideRequest) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// GetOpen retrieves rides currently open for bidding, most recent first.
	GetOpen(ctx context.Context) ([]*domain.RideRequest, error)

	// GetByUser retrieves rides where the user is the rider or the
	// assigned driver, most recent first.
	GetByUser(ctx context.Context, userID string) ([]*domain.RideRequest, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.RideRequest) error

	// UpdateVehicleLocation persists only the live vehicle coordinates.
	// Single-column write so the high-frequency location path never
	// contends with full-row updates on other rides.
	UpdateVehicleLocation(ctx context.Context, id string, lat, lng float64) error
}

// RideTxRepository extends RideRepository with row-locking reads, available
// only inside a transaction.
type RideTxRepository interface {
	RideRepository

	// GetByIDForUpdate retrieves a ride and locks its row until the
	// surrounding transaction commits or rolls back.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.RideRequest, error)
}
