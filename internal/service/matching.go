package service

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/geo"
	"ridehail/internal/observability"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

const (
	driverLockTTL = 10 * time.Second
	rideLockTTL   = 30 * time.Second // Lock ride during matching

	// nearTieThreshold is the relative distance difference under which two
	// candidates count as equally near and rating decides instead.
	nearTieThreshold = 0.2
)

// MatchingService assigns available drivers to requested rides.
type MatchingService struct {
	tx         repository.TxRunner
	lockStore  redis.LockStoreInterface
	cacheStore *redis.CacheStore
	driverRepo repository.DriverRepository
	rideRepo   repository.RideRepository
	notifier   RideNotifier
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	tx repository.TxRunner,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	rideRepo repository.RideRepository,
	notifier RideNotifier,
) *MatchingService {
	return &MatchingService{
		tx:         tx,
		lockStore:  lockStore,
		cacheStore: cacheStore,
		driverRepo: driverRepo,
		rideRepo:   rideRepo,
		notifier:   notifier,
	}
}

// MatchResult contains the result of a successful match.
type MatchResult struct {
	DriverID string
	Ride     *domain.Ride
}

// candidate pairs a driver with their distance to the pickup point.
type candidate struct {
	driver     *domain.Driver
	distanceKm float64
}

// Match finds and assigns an available driver to a ride.
//
// Delivery of ride request events is at least once, so the whole flow is
// written to be safe under redelivery: a ride lock serializes concurrent
// attempts, the requested-status check makes a second delivery a no-op, and
// the final assignment only commits if the driver row is still available.
func (s *MatchingService) Match(ctx context.Context, rideID string) (*MatchResult, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	start := time.Now()

	locked, err := s.lockStore.AcquireRideLock(ctx, rideID, rideLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		// Another matching attempt holds the ride.
		return nil, ErrMatchingInProgress
	}
	defer func() { _ = s.lockStore.ReleaseRideLock(ctx, rideID) }()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusRequested {
		return nil, ErrRideNotInRequestedState
	}

	if !ride.HasPassengerLocation() {
		// Nothing to match against. The ride stays requested so a corrected
		// request can still go through.
		return nil, ErrMissingPassengerLocation
	}

	candidates, err := s.rankCandidates(ctx, ride)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, s.markNoDrivers(ctx, ride)
	}

	cached := s.cachedCandidates(ctx, candidates)

	for _, c := range candidates {
		driverID := c.driver.ID

		if snap, ok := cached[driverID]; ok && !snap.IsAvailable {
			// A newer cached snapshot already shows this driver taken; skip
			// without touching the lock or the database.
			continue
		}

		locked, err := s.lockStore.AcquireDriverLock(ctx, driverID, driverLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			// Driver is being assigned to another ride.
			continue
		}

		// Re-read the driver; the ranked snapshot may be stale by now.
		freshDriver, err := s.driverRepo.GetByID(ctx, driverID)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}

		if !freshDriver.Matchable() {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			s.invalidateDriverCache(ctx, driverID)
			continue
		}

		result, err := s.assignDriver(ctx, ride, freshDriver)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			if errors.Is(err, repository.ErrNotFound) {
				// Lost the availability race, try the next candidate.
				s.invalidateDriverCache(ctx, driverID)
				continue
			}
			return nil, err
		}

		s.invalidateDriverCache(ctx, driverID)

		if s.notifier != nil {
			s.notifier.RideStatusChanged(ctx, result.Ride)
		}

		observability.MatchesTotal.Inc()
		observability.MatchLatency.Observe(time.Since(start).Seconds())

		// Driver lock expires via TTL.
		return result, nil
	}

	return nil, s.markNoDrivers(ctx, ride)
}

// rankCandidates loads matchable drivers and orders them for assignment.
// Closest first, except that drivers at nearly the same distance are ordered
// by rating so a clearly better driver wins a near tie.
func (s *MatchingService) rankCandidates(ctx context.Context, ride *domain.Ride) ([]candidate, error) {
	drivers, err := s.driverRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	pickup := ride.PassengerLocation
	candidates := make([]candidate, 0, len(drivers))
	for _, d := range drivers {
		if !d.Matchable() {
			continue
		}
		dist := geo.DistanceKm(
			pickup.Latitude, pickup.Longitude,
			d.CurrentLocation.Latitude, d.CurrentLocation.Longitude,
		)
		candidates = append(candidates, candidate{driver: d, distanceKm: dist})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		relDiff := math.Abs(a.distanceKm-b.distanceKm) / math.Min(a.distanceKm, b.distanceKm)
		if relDiff < nearTieThreshold {
			return a.driver.Rating > b.driver.Rating
		}
		return a.distanceKm < b.distanceKm
	})

	return candidates, nil
}

// markNoDrivers moves a requested ride to the no_drivers terminal state.
func (s *MatchingService) markNoDrivers(ctx context.Context, ride *domain.Ride) error {
	err := s.rideRepo.UpdateStatusFrom(ctx, ride.ID, domain.RideStatusRequested, domain.RideStatusNoDrivers)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Ride moved on concurrently; nothing to do.
			return ErrRideNotInRequestedState
		}
		return err
	}

	if s.notifier != nil {
		ride.Status = domain.RideStatusNoDrivers
		s.notifier.RideStatusChanged(ctx, ride)
	}

	observability.NoDriversTotal.Inc()
	return ErrNoDriverAvailable
}

// assignDriver atomically assigns a driver to a ride in one transaction.
// The driver update only matches an available row, so two assignments for
// the same driver cannot both commit.
func (s *MatchingService) assignDriver(ctx context.Context, ride *domain.Ride, driver *domain.Driver) (*MatchResult, error) {
	pickupKm := geo.DistanceKm(
		ride.PassengerLocation.Latitude, ride.PassengerLocation.Longitude,
		driver.CurrentLocation.Latitude, driver.CurrentLocation.Longitude,
	)

	err := s.tx.InTx(ctx, func(rides repository.RideRepository, drivers repository.DriverRepository) error {
		if err := drivers.AcquireForRide(ctx, driver.ID, ride.ID); err != nil {
			return err
		}

		now := time.Now()
		ride.Status = domain.RideStatusDriverAssigned
		ride.DriverID = driver.ID
		ride.DriverName = driver.Name
		ride.DriverPhone = driver.Phone
		loc := *driver.CurrentLocation
		ride.DriverLocation = &loc
		ride.EstimatedPickupTime = now.Add(time.Duration(geo.PickupETAMinutes(pickupKm)) * time.Minute)
		ride.UpdatedAt = now

		return rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("matched ride %s with driver %s (%.2f km away)", ride.ID, driver.ID, pickupKm)

	return &MatchResult{
		DriverID: driver.ID,
		Ride:     ride,
	}, nil
}

// cachedCandidates returns cached driver snapshots for the candidate set and
// refreshes the cache with the snapshots it was missing.
func (s *MatchingService) cachedCandidates(ctx context.Context, candidates []candidate) map[string]*redis.CachedDriver {
	if s.cacheStore == nil {
		return nil
	}

	ids := make([]string, len(candidates))
	byID := make(map[string]*domain.Driver, len(candidates))
	for i, c := range candidates {
		ids[i] = c.driver.ID
		byID[c.driver.ID] = c.driver
	}

	hits, missing, err := s.cacheStore.GetDriversBatch(ctx, ids)
	if err != nil {
		return nil
	}

	if len(missing) > 0 {
		snaps := make([]*redis.CachedDriver, 0, len(missing))
		for _, id := range missing {
			d := byID[id]
			snaps = append(snaps, &redis.CachedDriver{
				ID:          d.ID,
				Name:        d.Name,
				Phone:       d.Phone,
				Status:      string(d.Status),
				IsAvailable: d.IsAvailable,
				Rating:      d.Rating,
			})
		}
		// Fire and forget.
		go func() { _ = s.cacheStore.SetDriversBatch(context.Background(), snaps) }()
	}

	return hits
}

// invalidateDriverCache invalidates a driver's cache entry.
func (s *MatchingService) invalidateDriverCache(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
}
