package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"hail/internal/domain"
	"hail/internal/repository"
)

// BillRepository is a PostgreSQL implementation of repository.BillRepository.
type BillRepository struct {
	q Querier
}

// NewBillRepository creates a new PostgreSQL bill repository.
func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{q: db}
}

// Create persists a new bill. The unique index on ride_id enforces
// one bill per ride at the store level.
func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	query := `
		INSERT INTO bills (id, ride_id, fare, distance, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		bill.ID,
		bill.RideID,
		bill.Fare,
		bill.Distance,
		bill.DurationMinutes,
		bill.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetByRide retrieves the bill for a ride.
func (r *BillRepository) GetByRide(ctx context.Context, rideID string) (*domain.Bill, error) {
	query := `
		SELECT id, ride_id, fare, distance, duration_minutes, created_at
		FROM bills WHERE ride_id = $1
	`

	var bill domain.Bill
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&bill.ID,
		&bill.RideID,
		&bill.Fare,
		&bill.Distance,
		&bill.DurationMinutes,
		&bill.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}
