package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"hail/internal/domain"
	"hail/internal/repository"
	"hail/internal/service"
)

// ──────────────────────────────────────────────
// 5. BILLING
// ──────────────────────────────────────────────

func TestFinalize_DurationCountsFromBoarding(t *testing.T) {
	t.Parallel()

	billRepo := NewMockBillRepository()
	svc := service.NewBillingService(billRepo)

	boarded := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	completed := boarded.Add(23*time.Minute + 10*time.Second)

	ride := &domain.RideRequest{
		ID:        "ride-1",
		FinalFare: 250,
		BoardedAt: boarded,
	}

	bill, err := svc.Finalize(context.Background(), ride, 12.4, completed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.Fare != 250 {
		t.Errorf("expected fare 250, got %v", bill.Fare)
	}
	// Partial minutes round up.
	if bill.DurationMinutes != 24 {
		t.Errorf("expected 24 minutes, got %d", bill.DurationMinutes)
	}
	if bill.Distance != 12.4 {
		t.Errorf("expected distance 12.4, got %v", bill.Distance)
	}
}

func TestFinalize_NegativeDistanceClampedToZero(t *testing.T) {
	t.Parallel()

	svc := service.NewBillingService(NewMockBillRepository())

	ride := &domain.RideRequest{
		ID:        "ride-1",
		FinalFare: 250,
		BoardedAt: time.Now().Add(-10 * time.Minute),
	}

	bill, err := svc.Finalize(context.Background(), ride, -5, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.Distance != 0 {
		t.Errorf("expected distance 0, got %v", bill.Distance)
	}
}

func TestFinalize_SecondBillConflicts(t *testing.T) {
	t.Parallel()

	billRepo := NewMockBillRepository()
	svc := service.NewBillingService(billRepo)

	ride := &domain.RideRequest{
		ID:        "ride-1",
		FinalFare: 250,
		BoardedAt: time.Now().Add(-10 * time.Minute),
	}

	if _, err := svc.Finalize(context.Background(), ride, 12.4, time.Now()); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}

	_, err := svc.Finalize(context.Background(), ride, 12.4, time.Now())
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if billRepo.CountBills() != 1 {
		t.Errorf("expected 1 bill, got %d", billRepo.CountBills())
	}
}

func TestFinalize_MissingBoardingFallsBackToLastUpdate(t *testing.T) {
	t.Parallel()

	svc := service.NewBillingService(NewMockBillRepository())

	updated := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	ride := &domain.RideRequest{
		ID:        "ride-1",
		FinalFare: 250,
		UpdatedAt: updated,
	}

	bill, err := svc.Finalize(context.Background(), ride, 5, updated.Add(9*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.DurationMinutes != 9 {
		t.Errorf("expected 9 minutes, got %d", bill.DurationMinutes)
	}
}
