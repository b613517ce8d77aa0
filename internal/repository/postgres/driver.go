package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

const driverColumns = `id, name, COALESCE(phone, ''), status, is_available, lat, lng, current_ride_id,
		rating, rating_count, earnings, total_rides, COALESCE(fcm_token, ''), created_at, updated_at`

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

func scanDriver(s rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var lat, lng sql.NullFloat64
	var currentRideID sql.NullString

	err := s.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&driver.IsAvailable,
		&lat,
		&lng,
		&currentRideID,
		&driver.Rating,
		&driver.RatingCount,
		&driver.Earnings,
		&driver.TotalRides,
		&driver.FCMToken,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		driver.CurrentLocation = &domain.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	driver.CurrentRideID = currentRideID.String

	return &driver, nil
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, status, is_available, rating, rating_count, earnings, total_rides, fcm_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Status,
		driver.IsAvailable,
		driver.Rating,
		driver.RatingCount,
		driver.Earnings,
		driver.TotalRides,
		nullString(driver.FCMToken),
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// GetAvailable retrieves active drivers currently accepting rides.
func (r *DriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE status = 'active' AND is_available ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, status, id)
}

// UpdateLocation updates a driver's last reported position.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location, at time.Time) error {
	query := `UPDATE drivers SET lat = $1, lng = $2, updated_at = $3 WHERE id = $4`
	return r.execExpectingRow(ctx, query, loc.Latitude, loc.Longitude, at, id)
}

// SetAvailability toggles whether a driver accepts new rides.
func (r *DriverRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE drivers SET is_available = $1, updated_at = NOW() WHERE id = $2`
	return r.execExpectingRow(ctx, query, available, id)
}

// AcquireForRide marks a driver busy on a ride only if the driver is still
// available. The is_available guard makes concurrent assignments lose cleanly:
// the second writer matches zero rows and gets ErrNotFound.
func (r *DriverRepository) AcquireForRide(ctx context.Context, driverID, rideID string) error {
	query := `
		UPDATE drivers
		SET is_available = FALSE, current_ride_id = $1, updated_at = NOW()
		WHERE id = $2 AND is_available = TRUE
	`
	return r.execExpectingRow(ctx, query, rideID, driverID)
}

// Release frees a driver after a ride ends or is cancelled.
func (r *DriverRepository) Release(ctx context.Context, driverID string) error {
	query := `
		UPDATE drivers
		SET is_available = TRUE, current_ride_id = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execExpectingRow(ctx, query, driverID)
}

// AddRating folds a new passenger rating into the driver's average.
func (r *DriverRepository) AddRating(ctx context.Context, driverID string, rating float64) error {
	query := `
		UPDATE drivers
		SET rating = (rating * rating_count + $1) / (rating_count + 1),
			rating_count = rating_count + 1,
			updated_at = NOW()
		WHERE id = $2
	`
	return r.execExpectingRow(ctx, query, rating, driverID)
}

// CreditEarnings adds a completed ride's payout to the driver's totals.
func (r *DriverRepository) CreditEarnings(ctx context.Context, driverID string, amount float64) error {
	query := `
		UPDATE drivers
		SET earnings = earnings + $1, total_rides = total_rides + 1, updated_at = NOW()
		WHERE id = $2
	`
	return r.execExpectingRow(ctx, query, amount, driverID)
}

func (r *DriverRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
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
