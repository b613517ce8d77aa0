package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// DriverService handles driver onboarding, availability and location.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
	heartbeatRepo repository.LocationUpdateRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	heartbeatRepo repository.LocationUpdateRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		heartbeatRepo: heartbeatRepo,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name     string
	Phone    string
	FCMToken string
}

// Register creates a new driver in pending state. Drivers start unavailable
// and become matchable only after activation.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidDriverID
	}

	now := time.Now()
	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Status:    domain.DriverStatusPending,
		FCMToken:  req.FCMToken,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// Activate approves a pending driver.
func (s *DriverService) Activate(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	return s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusActive)
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation records a driver heartbeat: the Redis geo index for nearby
// lookups, the driver row for matching, and an audit row the retention job
// later prunes.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	now := time.Now()
	loc := domain.Location{Latitude: req.Lat, Longitude: req.Lng}

	if err := s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng); err != nil {
		return err
	}

	if err := s.driverRepo.UpdateLocation(ctx, req.DriverID, loc, now); err != nil {
		return err
	}

	if s.heartbeatRepo != nil {
		update := &domain.LocationUpdate{
			ID:        uuid.New().String(),
			DriverID:  req.DriverID,
			Location:  loc,
			Timestamp: now,
		}
		// Heartbeat history is best effort.
		_ = s.heartbeatRepo.Create(ctx, update)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, req.DriverID)
	}

	return nil
}

// SetAvailability toggles whether a driver accepts new rides. Going
// unavailable also drops the driver from the geo index so nearby-driver
// queries stop returning them.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, available bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if available && driver.Status != domain.DriverStatusActive {
		return ErrDriverNotActive
	}

	if err := s.driverRepo.SetAvailability(ctx, driverID, available); err != nil {
		return err
	}

	if !available {
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			return err
		}
	}

	// Write the fresh snapshot through so the matcher's cached pre-filter
	// sees the change before the entry expires.
	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, &redis.CachedDriver{
			ID:          driver.ID,
			Name:        driver.Name,
			Phone:       driver.Phone,
			Status:      string(driver.Status),
			IsAvailable: available,
			Rating:      driver.Rating,
		})
	}

	return nil
}

// NearbyDrivers returns drivers within radiusKm of a point, closest first.
func (s *DriverService) NearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}
	return s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
}
