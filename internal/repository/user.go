package repository

import (
	"context"

	"ridehail/internal/domain"
)

// UserRepository defines the persistence operations for passengers.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// RecordSpend bumps the user's ride count and lifetime spend after a
	// settled ride.
	RecordSpend(ctx context.Context, userID string, amount float64) error
}
