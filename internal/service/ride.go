package service

import (
	"context"
	"database/sql"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/geo"
	"ridehail/internal/repository"
	"ridehail/internal/repository/postgres"
)

// RideRequestPublisher hands a new ride request to the matching pipeline.
type RideRequestPublisher interface {
	PublishRideRequested(ctx context.Context, rideID string) error
}

// Settler collects payment for a completed ride.
type Settler interface {
	Settle(ctx context.Context, rideID string) (*domain.Transaction, error)
}

// Ensure SettlementService implements Settler.
var _ Settler = (*SettlementService)(nil)

// RideService handles the passenger-facing ride lifecycle.
type RideService struct {
	db         *sql.DB
	rideRepo   repository.RideRepository
	driverRepo repository.DriverRepository
	surge      *SurgeService
	publisher  RideRequestPublisher
	notifier   RideNotifier
	settler    Settler
}

// NewRideService creates a new RideService.
func NewRideService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	surge *SurgeService,
	publisher RideRequestPublisher,
	notifier RideNotifier,
	settler Settler,
) *RideService {
	return &RideService{
		db:         db,
		rideRepo:   rideRepo,
		driverRepo: driverRepo,
		surge:      surge,
		publisher:  publisher,
		notifier:   notifier,
		settler:    settler,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	PassengerID   string
	PassengerName string
	Pickup        domain.Location
	Destination   domain.Location
}

// CreateRide records a new ride request and hands it to the matching
// pipeline. Matching itself runs asynchronously; the returned ride is in
// requested state.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	surgeFactor := 1.0
	if s.surge != nil {
		surgeFactor = s.surge.GetFactor(ctx, req.Pickup.Latitude, req.Pickup.Longitude)
	}

	distanceKm := geo.DistanceKm(
		req.Pickup.Latitude, req.Pickup.Longitude,
		req.Destination.Latitude, req.Destination.Longitude,
	)

	now := time.Now()
	pickup := req.Pickup
	destination := req.Destination
	ride := &domain.Ride{
		ID:                uuid.New().String(),
		PassengerID:       req.PassengerID,
		PassengerName:     req.PassengerName,
		PassengerLocation: &pickup,
		Destination:       &destination,
		Status:            domain.RideStatusRequested,
		EstimatedFare:     estimateFare(distanceKm, surgeFactor),
		DistanceKm:        distanceKm,
		SurgeFactor:       surgeFactor,
		PaymentStatus:     domain.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRideRequested(ctx, ride.ID); err != nil {
			// The ride is persisted and stays requested; the passenger can
			// cancel it or request again if no driver ever shows up.
			log.Printf("publish ride request %s failed: %v", ride.ID, err)
		}
	}

	return ride, nil
}

// estimateFare quotes a fare from the trip distance before the ride runs.
func estimateFare(distanceKm, surgeFactor float64) float64 {
	fare := baseFare + distanceKm*perKmRate
	if surgeFactor > 1 {
		fare *= surgeFactor
	}
	return math.Round(fare)
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ListRides retrieves recent rides.
func (s *RideService) ListRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

// ListPassengerRides retrieves a passenger's ride history.
func (s *RideService) ListPassengerRides(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.rideRepo.GetByPassengerID(ctx, passengerID)
}

// CancelRideRequest contains the parameters for cancelling a ride.
type CancelRideRequest struct {
	RideID string
	Reason string
}

// CancelRide cancels a ride from any non-terminal state. An assigned driver
// is released in the same database transaction as the status change.
func (s *RideService) CancelRide(ctx context.Context, req CancelRideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideAlreadyCancelled
	}

	if err := ride.Transition(domain.RideStatusCancelled); err != nil {
		return nil, err
	}
	ride.CancelReason = req.Reason

	if err := s.updateRideReleasingDriver(ctx, ride); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.RideStatusChanged(ctx, ride)
	}

	return ride, nil
}

// DriverArrived marks the driver as waiting at the pickup point.
func (s *RideService) DriverArrived(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	if err := ride.Transition(domain.RideStatusDriverArrived); err != nil {
		return nil, err
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.RideStatusChanged(ctx, ride)
	}
	return ride, nil
}

// StartRide begins the trip.
func (s *RideService) StartRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	if err := ride.Transition(domain.RideStatusInProgress); err != nil {
		return nil, err
	}
	ride.StartTime = time.Now()

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.RideStatusChanged(ctx, ride)
	}
	return ride, nil
}

// CompleteRide ends the trip, frees the driver and settles payment. A failed
// settlement leaves the ride completed with a failed payment status; it does
// not undo the completion.
func (s *RideService) CompleteRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.rideForDriverAction(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	if err := ride.Transition(domain.RideStatusCompleted); err != nil {
		return nil, err
	}
	ride.EndTime = time.Now()

	if err := s.updateRideReleasingDriver(ctx, ride); err != nil {
		return nil, err
	}

	if s.settler != nil {
		if _, err := s.settler.Settle(ctx, ride.ID); err != nil {
			log.Printf("settlement for ride %s failed: %v", ride.ID, err)
		} else if fresh, err := s.rideRepo.GetByID(ctx, ride.ID); err == nil {
			ride = fresh
		}
	}

	if s.notifier != nil {
		s.notifier.RideStatusChanged(ctx, ride)
	}
	return ride, nil
}

// RateDriver records the passenger's rating for a completed ride.
func (s *RideService) RateDriver(ctx context.Context, rideID string, rating float64) error {
	if rideID == "" {
		return ErrInvalidRideID
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}

	if ride.Status != domain.RideStatusCompleted {
		return ErrRideNotCompleted
	}
	if ride.DriverID == "" {
		return ErrDriverNotAssignedToRide
	}

	return s.driverRepo.AddRating(ctx, ride.DriverID, rating)
}

// rideForDriverAction loads a ride and checks the acting driver owns it.
func (s *RideService) rideForDriverAction(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, ErrDriverNotAssignedToRide
	}
	return ride, nil
}

// updateRideReleasingDriver persists the ride and, when a driver is attached,
// frees them in the same transaction.
func (s *RideService) updateRideReleasingDriver(ctx context.Context, ride *domain.Ride) error {
	if ride.DriverID == "" {
		return s.rideRepo.Update(ctx, ride)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = postgres.NewRideRepositoryWithTx(tx).Update(ctx, ride); err != nil {
		return err
	}
	if err = postgres.NewDriverRepositoryWithTx(tx).Release(ctx, ride.DriverID); err != nil {
		return err
	}

	return tx.Commit()
}

func validateCreateRequest(req CreateRideRequest) error {
	if req.PassengerID == "" {
		return ErrInvalidPassengerID
	}
	if !isValidLatitude(req.Pickup.Latitude) || !isValidLongitude(req.Pickup.Longitude) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.Destination.Latitude) || !isValidLongitude(req.Destination.Longitude) {
		return ErrInvalidDestinationLocation
	}
	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
