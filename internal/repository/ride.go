package repository

import (
	"context"

	"ridehail/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides, newest first.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetByPassengerID retrieves a passenger's rides, newest first.
	GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// UpdateStatusFrom transitions a ride's status only if it currently has
	// the expected status. Returns ErrNotFound when no row matched, which
	// callers use as a conflict signal.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.RideStatus) error
}
