package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hail/internal/domain"
	"hail/internal/repository"
)

const rideColumns = `id, rider_id, target_driver_id, pickup_address, pickup_lat, pickup_lng,
		drop_address, drop_lat, drop_lng, status, assigned_driver_id, final_fare,
		otp, otp_verified, vehicle_lat, vehicle_lng, distance, cancelled_by,
		created_at, updated_at, boarded_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride request.
func (r *RideRepository) Create(ctx context.Context, ride *domain.RideRequest) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.TargetDriverID),
		ride.PickupAddress,
		ride.PickupLat,
		ride.PickupLng,
		ride.DropAddress,
		ride.DropLat,
		ride.DropLng,
		ride.Status,
		nullString(ride.AssignedDriverID),
		ride.FinalFare,
		nullString(ride.OTP),
		ride.OTPVerified,
		ride.VehicleLat,
		ride.VehicleLng,
		ride.Distance,
		nullString(string(ride.CancelledBy)),
		ride.CreatedAt,
		ride.UpdatedAt,
		nullTime(ride.BoardedAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride and locks the row for the duration of
// the surrounding transaction. Only meaningful on a tx-scoped repository.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetOpen retrieves rides open for bidding, most recent first.
func (r *RideRepository) GetOpen(ctx context.Context) ([]*domain.RideRequest, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status IN ($1, $2)
		ORDER BY created_at DESC LIMIT 100
	`
	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusPending, domain.RideStatusNegotiating)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// GetByUser retrieves rides where the user is the rider or the assigned
// driver, most recent first.
func (r *RideRepository) GetByUser(ctx context.Context, userID string) ([]*domain.RideRequest, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE rider_id = $1 OR assigned_driver_id = $1
		ORDER BY created_at DESC LIMIT 100
	`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.RideRequest) error {
	query := `
		UPDATE rides
		SET status = $1, assigned_driver_id = $2, final_fare = $3, otp = $4,
		    otp_verified = $5, vehicle_lat = $6, vehicle_lng = $7, distance = $8,
		    cancelled_by = $9, updated_at = $10, boarded_at = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		nullString(ride.AssignedDriverID),
		ride.FinalFare,
		nullString(ride.OTP),
		ride.OTPVerified,
		ride.VehicleLat,
		ride.VehicleLng,
		ride.Distance,
		nullString(string(ride.CancelledBy)),
		ride.UpdatedAt,
		nullTime(ride.BoardedAt),
		ride.ID,
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

// UpdateVehicleLocation persists only the live vehicle coordinates.
func (r *RideRepository) UpdateVehicleLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE rides SET vehicle_lat = $1, vehicle_lng = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, lat, lng, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RideRepository) scan(row rowScanner) (*domain.RideRequest, error) {
	var ride domain.RideRequest
	var targetDriverID, assignedDriverID, otp, cancelledBy sql.NullString
	var boardedAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&targetDriverID,
		&ride.PickupAddress,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.DropAddress,
		&ride.DropLat,
		&ride.DropLng,
		&ride.Status,
		&assignedDriverID,
		&ride.FinalFare,
		&otp,
		&ride.OTPVerified,
		&ride.VehicleLat,
		&ride.VehicleLng,
		&ride.Distance,
		&cancelledBy,
		&ride.CreatedAt,
		&ride.UpdatedAt,
		&boardedAt,
	)
	if err != nil {
		return nil, err
	}

	ride.TargetDriverID = targetDriverID.String
	ride.AssignedDriverID = assignedDriverID.String
	ride.OTP = otp.String
	ride.CancelledBy = domain.Role(cancelledBy.String)
	if boardedAt.Valid {
		ride.BoardedAt = boardedAt.Time
	}

	return &ride, nil
}

func (r *RideRepository) scanOne(row *sql.Row) (*domain.RideRequest, error) {
	ride, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

func (r *RideRepository) scanAll(rows *sql.Rows) ([]*domain.RideRequest, error) {
	defer rows.Close()

	var rides []*domain.RideRequest
	for rows.Next() {
		ride, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
