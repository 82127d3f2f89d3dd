package repository

import (
	"context"

	"hail/internal/domain"
)

// BillRepository defines the persistence operations for bills.
type BillRepository interface {
	// Create persists a new bill. Fails with ErrConflict if the ride
	// already has one.
	Create(ctx context.Context, bill *domain.Bill) error

	// GetByRide retrieves the bill for a ride.
	GetByRide(ctx context.Context, rideID string) (*domain.Bill, error)
}
