package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

const userColumns = `id, name, phone, COALESCE(fcm_token, ''), COALESCE(default_payment_method, ''), total_rides, total_spent, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(s rowScanner) (*domain.User, error) {
	var user domain.User
	err := s.Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.FCMToken,
		&user.DefaultPaymentMethod,
		&user.TotalRides,
		&user.TotalSpent,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone, fcm_token, default_payment_method, total_rides, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		nullString(user.FCMToken),
		nullString(user.DefaultPaymentMethod),
		user.TotalRides,
		user.TotalSpent,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	user, err := scanUser(r.q.QueryRowContext(ctx, query, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, fcm_token = $4, default_payment_method = $5,
			total_rides = $6, total_spent = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		nullString(user.FCMToken),
		nullString(user.DefaultPaymentMethod),
		user.TotalRides,
		user.TotalSpent,
		user.UpdatedAt,
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

// RecordSpend bumps the user's ride count and lifetime spend.
func (r *UserRepository) RecordSpend(ctx context.Context, userID string, amount float64) error {
	query := `
		UPDATE users
		SET total_rides = total_rides + 1, total_spent = total_spent + $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.q.ExecContext(ctx, query, amount, userID)
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
