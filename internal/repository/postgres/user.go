package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hail/internal/domain"
	"hail/internal/repository"
)

const userColumns = `id, name, email, phone, role, vehicle_model, vehicle_plate, vehicle_color, online, created_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		nullString(user.Vehicle.Model),
		nullString(user.Vehicle.Plate),
		nullString(user.Vehicle.Color),
		user.Online,
		user.CreatedAt,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	var model, plate, color sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&model,
		&plate,
		&color,
		&user.Online,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	user.Vehicle = domain.Vehicle{Model: model.String, Plate: plate.String, Color: color.String}
	return &user, nil
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var model, plate, color sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Phone,
			&user.Role,
			&model,
			&plate,
			&color,
			&user.Online,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		user.Vehicle = domain.Vehicle{Model: model.String, Plate: plate.String, Color: color.String}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// SetOnline updates a driver's persisted online flag.
func (r *UserRepository) SetOnline(ctx context.Context, id string, online bool) error {
	query := `UPDATE users SET online = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, online, id)
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
