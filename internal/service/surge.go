package service

import (
	"context"

	"ridehail/internal/domain"
	"ridehail/internal/geo"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// SurgeService calculates surge pricing based on supply and demand.
type SurgeService struct {
	locationStore redis.LocationStoreInterface
	rideRepo      repository.RideRepository
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(
	locationStore redis.LocationStoreInterface,
	rideRepo repository.RideRepository,
) *SurgeService {
	return &SurgeService{
		locationStore: locationStore,
		rideRepo:      rideRepo,
	}
}

// SurgeConfig contains surge pricing configuration.
type SurgeConfig struct {
	RadiusKm       float64 // Radius to check for supply/demand
	LowSurgeRatio  float64 // Demand/supply ratio for 1.25x surge
	MedSurgeRatio  float64 // Demand/supply ratio for 1.5x surge
	HighSurgeRatio float64 // Demand/supply ratio for 2.0x surge
	MaxSurge       float64 // Maximum surge factor
}

// DefaultSurgeConfig returns the default surge configuration.
func DefaultSurgeConfig() SurgeConfig {
	return SurgeConfig{
		RadiusKm:       5.0,
		LowSurgeRatio:  1.2,
		MedSurgeRatio:  1.5,
		HighSurgeRatio: 2.0,
		MaxSurge:       2.0,
	}
}

// GetFactor calculates the surge factor for a given location.
// Returns 1.0 if no surge, up to MaxSurge if demand far outstrips supply.
func (s *SurgeService) GetFactor(ctx context.Context, lat, lng float64) float64 {
	config := DefaultSurgeConfig()

	supply := s.countDriversInArea(ctx, lat, lng, config.RadiusKm)
	demand := s.countActiveRequestsInArea(ctx, lat, lng, config.RadiusKm)

	return calculateSurgeFactor(supply, demand, config)
}

// countDriversInArea returns the number of available drivers within radius.
func (s *SurgeService) countDriversInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	count, err := s.locationStore.CountNearbyDrivers(ctx, lat, lng, radiusKm)
	if err != nil {
		// On error, assume healthy supply so a Redis hiccup never causes
		// false surge.
		return 10
	}
	return count
}

// countActiveRequestsInArea returns the number of open ride requests near
// the point.
func (s *SurgeService) countActiveRequestsInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	rides, err := s.rideRepo.GetAll(ctx)
	if err != nil {
		return 0
	}

	count := 0
	for _, ride := range rides {
		if ride.Status != domain.RideStatusRequested && ride.Status != domain.RideStatusDriverAssigned {
			continue
		}
		if ride.PassengerLocation == nil {
			continue
		}

		dist := geo.DistanceKm(lat, lng, ride.PassengerLocation.Latitude, ride.PassengerLocation.Longitude)
		if dist <= radiusKm {
			count++
		}
	}

	return count
}

// calculateSurgeFactor determines the factor from the demand/supply ratio.
func calculateSurgeFactor(supply, demand int, config SurgeConfig) float64 {
	if supply == 0 {
		if demand > 0 {
			return config.MaxSurge
		}
		return 1.0
	}

	ratio := float64(demand) / float64(supply)

	switch {
	case ratio >= config.HighSurgeRatio:
		return config.MaxSurge
	case ratio >= config.MedSurgeRatio:
		return 1.5
	case ratio >= config.LowSurgeRatio:
		return 1.25
	default:
		return 1.0
	}
}
