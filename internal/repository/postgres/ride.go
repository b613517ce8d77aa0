package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

const rideColumns = `id, passenger_id, passenger_name, pickup_lat, pickup_lng, destination_lat, destination_lng,
		status, driver_id, driver_name, driver_phone, driver_lat, driver_lng,
		estimated_pickup_time, estimated_fare, fare, distance_km, surge_factor,
		payment_status, payment_error, transaction_id, start_time, end_time,
		cancel_reason, archived, created_at, updated_at`

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

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func rideArgs(ride *domain.Ride) []any {
	var pickupLat, pickupLng, destLat, destLng, driverLat, driverLng sql.NullFloat64
	if ride.PassengerLocation != nil {
		pickupLat = sql.NullFloat64{Float64: ride.PassengerLocation.Latitude, Valid: true}
		pickupLng = sql.NullFloat64{Float64: ride.PassengerLocation.Longitude, Valid: true}
	}
	if ride.Destination != nil {
		destLat = sql.NullFloat64{Float64: ride.Destination.Latitude, Valid: true}
		destLng = sql.NullFloat64{Float64: ride.Destination.Longitude, Valid: true}
	}
	if ride.DriverLocation != nil {
		driverLat = sql.NullFloat64{Float64: ride.DriverLocation.Latitude, Valid: true}
		driverLng = sql.NullFloat64{Float64: ride.DriverLocation.Longitude, Valid: true}
	}

	var estimatedPickup, startTime, endTime sql.NullTime
	if !ride.EstimatedPickupTime.IsZero() {
		estimatedPickup = sql.NullTime{Time: ride.EstimatedPickupTime, Valid: true}
	}
	if !ride.StartTime.IsZero() {
		startTime = sql.NullTime{Time: ride.StartTime, Valid: true}
	}
	if !ride.EndTime.IsZero() {
		endTime = sql.NullTime{Time: ride.EndTime, Valid: true}
	}

	// Default surge to 1.0 if not set
	surgeFactor := ride.SurgeFactor
	if surgeFactor < 1.0 {
		surgeFactor = 1.0
	}

	return []any{
		ride.ID,
		ride.PassengerID,
		ride.PassengerName,
		pickupLat,
		pickupLng,
		destLat,
		destLng,
		ride.Status,
		nullString(ride.DriverID),
		nullString(ride.DriverName),
		nullString(ride.DriverPhone),
		driverLat,
		driverLng,
		estimatedPickup,
		ride.EstimatedFare,
		ride.Fare,
		ride.DistanceKm,
		surgeFactor,
		nullString(string(ride.PaymentStatus)),
		nullString(ride.PaymentError),
		nullString(ride.TransactionID),
		startTime,
		endTime,
		nullString(ride.CancelReason),
		ride.Archived,
		ride.CreatedAt,
		ride.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(s rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var pickupLat, pickupLng, destLat, destLng, driverLat, driverLng sql.NullFloat64
	var driverID, driverName, driverPhone, paymentStatus, paymentError, transactionID, cancelReason sql.NullString
	var estimatedPickup, startTime, endTime sql.NullTime

	err := s.Scan(
		&ride.ID,
		&ride.PassengerID,
		&ride.PassengerName,
		&pickupLat,
		&pickupLng,
		&destLat,
		&destLng,
		&ride.Status,
		&driverID,
		&driverName,
		&driverPhone,
		&driverLat,
		&driverLng,
		&estimatedPickup,
		&ride.EstimatedFare,
		&ride.Fare,
		&ride.DistanceKm,
		&ride.SurgeFactor,
		&paymentStatus,
		&paymentError,
		&transactionID,
		&startTime,
		&endTime,
		&cancelReason,
		&ride.Archived,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pickupLat.Valid && pickupLng.Valid {
		ride.PassengerLocation = &domain.Location{Latitude: pickupLat.Float64, Longitude: pickupLng.Float64}
	}
	if destLat.Valid && destLng.Valid {
		ride.Destination = &domain.Location{Latitude: destLat.Float64, Longitude: destLng.Float64}
	}
	if driverLat.Valid && driverLng.Valid {
		ride.DriverLocation = &domain.Location{Latitude: driverLat.Float64, Longitude: driverLng.Float64}
	}
	ride.DriverID = driverID.String
	ride.DriverName = driverName.String
	ride.DriverPhone = driverPhone.String
	ride.PaymentStatus = domain.PaymentStatus(paymentStatus.String)
	ride.PaymentError = paymentError.String
	ride.TransactionID = transactionID.String
	ride.CancelReason = cancelReason.String
	if estimatedPickup.Valid {
		ride.EstimatedPickupTime = estimatedPickup.Time
	}
	if startTime.Valid {
		ride.StartTime = startTime.Time
	}
	if endTime.Valid {
		ride.EndTime = endTime.Time
	}

	return &ride, nil
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	_, err := r.q.ExecContext(ctx, query, rideArgs(ride)...)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves recent rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE NOT archived ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// GetByPassengerID retrieves a passenger's rides, newest first.
func (r *RideRepository) GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE passenger_id = $1 AND NOT archived ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET passenger_id = $2, passenger_name = $3, pickup_lat = $4, pickup_lng = $5,
			destination_lat = $6, destination_lng = $7, status = $8,
			driver_id = $9, driver_name = $10, driver_phone = $11, driver_lat = $12, driver_lng = $13,
			estimated_pickup_time = $14, estimated_fare = $15, fare = $16, distance_km = $17, surge_factor = $18,
			payment_status = $19, payment_error = $20, transaction_id = $21,
			start_time = $22, end_time = $23, cancel_reason = $24, archived = $25,
			created_at = $26, updated_at = $27
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, rideArgs(ride)...)
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

// UpdateStatusFrom transitions a ride's status only if it currently has the
// expected status. Returns repository.ErrNotFound when no row matched.
func (r *RideRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.RideStatus) error {
	query := `UPDATE rides SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.q.ExecContext(ctx, query, id, from, to)
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
