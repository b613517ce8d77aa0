package repository

import (
	"context"
	"time"

	"ridehail/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// GetAvailable retrieves active drivers currently accepting rides.
	GetAvailable(ctx context.Context) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateLocation updates a driver's last reported position.
	UpdateLocation(ctx context.Context, id string, loc domain.Location, at time.Time) error

	// SetAvailability toggles whether a driver accepts new rides.
	SetAvailability(ctx context.Context, id string, available bool) error

	// AcquireForRide marks a driver busy on a ride only if the driver is
	// still available. Returns ErrNotFound when the driver was taken by a
	// concurrent assignment.
	AcquireForRide(ctx context.Context, driverID, rideID string) error

	// Release frees a driver after a ride ends or is cancelled.
	Release(ctx context.Context, driverID string) error

	// AddRating folds a new passenger rating into the driver's average.
	AddRating(ctx context.Context, driverID string, rating float64) error

	// CreditEarnings adds a completed ride's payout to the driver's totals.
	CreditEarnings(ctx context.Context, driverID string, amount float64) error
}
