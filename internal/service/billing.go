package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"hail/internal/domain"
	"hail/internal/repository"
)

// BillingService computes the bill record when a ride completes.
type BillingService struct {
	billRepo repository.BillRepository
}

// NewBillingService creates a new BillingService.
func NewBillingService(billRepo repository.BillRepository) *BillingService {
	return &BillingService{billRepo: billRepo}
}

// Finalize creates the single bill for a completed ride. The fare is the
// negotiated price, never recomputed from distance; the duration is the
// elapsed minutes since boarding, rounded up.
func (s *BillingService) Finalize(ctx context.Context, ride *domain.RideRequest, distance float64, completedAt time.Time) (*domain.Bill, error) {
	if distance < 0 {
		distance = 0
	}

	baseline := ride.BoardedAt
	if baseline.IsZero() {
		baseline = ride.UpdatedAt
	}

	bill := &domain.Bill{
		ID:              uuid.New().String(),
		RideID:          ride.ID,
		Fare:            ride.FinalFare,
		Distance:        distance,
		DurationMinutes: ceilMinutes(completedAt.Sub(baseline)),
		CreatedAt:       completedAt,
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// GetByRide retrieves the bill for a completed ride.
func (s *BillingService) GetByRide(ctx context.Context, rideID string) (*domain.Bill, error) {
	return s.billRepo.GetByRide(ctx, rideID)
}

func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
