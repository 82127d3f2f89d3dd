package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hail/internal/domain"
	"hail/internal/repository"
)

const bidColumns = `id, ride_id, driver_id, offered_fare, counter_fare, status, created_at, updated_at`

// BidRepository is a PostgreSQL implementation of repository.BidRepository.
type BidRepository struct {
	q Querier
}

// NewBidRepository creates a new PostgreSQL bid repository.
func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{q: db}
}

// NewBidRepositoryWithTx creates a bid repository using a transaction.
func NewBidRepositoryWithTx(tx *sql.Tx) *BidRepository {
	return &BidRepository{q: tx}
}

// Create persists a new bid.
func (r *BidRepository) Create(ctx context.Context, bid *domain.RideBid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		bid.ID,
		bid.RideID,
		bid.DriverID,
		bid.OfferedFare,
		bid.CounterFare,
		bid.Status,
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	return err
}

// GetByID retrieves a bid by ID.
func (r *BidRepository) GetByID(ctx context.Context, id string) (*domain.RideBid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideAndDriver retrieves the single bid a driver holds on a ride.
func (r *BidRepository) GetByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideBid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE ride_id = $1 AND driver_id = $2`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID, driverID))
}

// GetByRide retrieves all bids on a ride, most recent first.
func (r *BidRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.RideBid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE ride_id = $1 ORDER BY updated_at DESC`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.RideBid
	for rows.Next() {
		bid, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// Update updates an existing bid.
func (r *BidRepository) Update(ctx context.Context, bid *domain.RideBid) error {
	query := `
		UPDATE bids
		SET offered_fare = $1, counter_fare = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		bid.OfferedFare,
		bid.CounterFare,
		bid.Status,
		bid.UpdatedAt,
		bid.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// RejectOthers marks every other bid on the ride as rejected and returns
// the driver IDs whose bids were rejected.
func (r *BidRepository) RejectOthers(ctx context.Context, rideID, keepBidID string) ([]string, error) {
	query := `
		UPDATE bids SET status = $1, updated_at = NOW()
		WHERE ride_id = $2 AND id <> $3 AND status <> $1
		RETURNING driver_id
	`

	rows, err := r.q.QueryContext(ctx, query, domain.BidStatusRejected, rideID, keepBidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var driverIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		driverIDs = append(driverIDs, id)
	}
	return driverIDs, rows.Err()
}

func (r *BidRepository) scan(row rowScanner) (*domain.RideBid, error) {
	var bid domain.RideBid
	err := row.Scan(
		&bid.ID,
		&bid.RideID,
		&bid.DriverID,
		&bid.OfferedFare,
		&bid.CounterFare,
		&bid.Status,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) scanOne(row *sql.Row) (*domain.RideBid, error) {
	bid, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return bid, nil
}
