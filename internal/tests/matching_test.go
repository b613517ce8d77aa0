package tests

import (
	"context"
	"errors"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

func newMatchingService(lockStore *MockLockStore, driverRepo *MockDriverRepository, rideRepo *MockRideRepository, notifier *MockNotifier) *service.MatchingService {
	tx := NewMockTxRunner(rideRepo, driverRepo)
	// Avoid wrapping a nil *MockNotifier in a non-nil interface value.
	var n service.RideNotifier
	if notifier != nil {
		n = notifier
	}
	return service.NewMatchingService(tx, lockStore, nil, driverRepo, rideRepo, n)
}

func availableDriver(id string, lat, lng, rating float64) *domain.Driver {
	return &domain.Driver{
		ID:              id,
		Name:            "Ravi",
		Phone:           "+919900112233",
		Status:          domain.DriverStatusActive,
		IsAvailable:     true,
		Rating:          rating,
		CurrentLocation: &domain.Location{Latitude: lat, Longitude: lng},
	}
}

func requestedRide(id string) *domain.Ride {
	return &domain.Ride{
		ID:                id,
		PassengerID:       "passenger-1",
		PassengerName:     "Asha",
		PassengerLocation: &domain.Location{Latitude: 12.9716, Longitude: 77.5946},
		Destination:       &domain.Location{Latitude: 12.9352, Longitude: 77.6245},
		Status:            domain.RideStatusRequested,
	}
}

func TestMatch_SingleDriverIsAssigned(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()
	notifier := NewMockNotifier()

	// 2 km north of the pickup point.
	driverRepo.AddDriver(availableDriver("driver-1", 12.9896, 77.5946, 4.5))
	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newMatchingService(lockStore, driverRepo, rideRepo, notifier)

	result, err := svc.Match(ctx, "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", result.DriverID)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusDriverAssigned {
		t.Errorf("expected driver_assigned status, got %s", ride.Status)
	}
	if ride.DriverID != "driver-1" || ride.DriverName != "Ravi" {
		t.Errorf("driver snapshot not written: %s / %s", ride.DriverID, ride.DriverName)
	}
	if ride.EstimatedPickupTime.IsZero() {
		t.Error("estimated pickup time not set")
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.IsAvailable {
		t.Error("assigned driver still marked available")
	}
	if driver.CurrentRideID != "ride-1" {
		t.Errorf("expected current ride ride-1, got %q", driver.CurrentRideID)
	}

	notified := notifier.Notifications()
	if len(notified) != 1 || notified[0].Status != domain.RideStatusDriverAssigned {
		t.Errorf("expected one driver_assigned notification, got %v", notified)
	}
}

func TestMatch_LostAvailabilityRaceFallsThroughToNextCandidate(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()

	// The near driver loses the row-level availability race at commit time,
	// so the far driver must get the ride.
	driverRepo.AddDriver(availableDriver("driver-near", 12.9896, 77.5946, 4.0))
	driverRepo.AddDriver(availableDriver("driver-far", 13.0616, 77.5946, 4.8))
	driverRepo.AcquireRaceLosers = map[string]bool{"driver-near": true}
	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newMatchingService(lockStore, driverRepo, rideRepo, nil)

	result, err := svc.Match(ctx, "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DriverID != "driver-far" {
		t.Errorf("expected driver-far after race loss, got %s", result.DriverID)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusDriverAssigned || ride.DriverID != "driver-far" {
		t.Errorf("ride not assigned to fallback driver: %s / %s", ride.Status, ride.DriverID)
	}
	if driverRepo.GetDriver("driver-far").IsAvailable {
		t.Error("fallback driver still marked available")
	}
}

func TestMatch_NoDriversMarksRideTerminal(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()
	notifier := NewMockNotifier()

	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newMatchingService(lockStore, driverRepo, rideRepo, notifier)

	_, err := svc.Match(ctx, "ride-1")
	if !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusNoDrivers {
		t.Errorf("expected no_drivers status, got %s", ride.Status)
	}

	notified := notifier.Notifications()
	if len(notified) != 1 || notified[0].Status != domain.RideStatusNoDrivers {
		t.Errorf("expected one no_drivers notification, got %v", notified)
	}
}

func TestMatch_UnmatchableDriversDoNotCount(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()

	// Available but no reported location, so not matchable.
	driverRepo.AddDriver(&domain.Driver{
		ID:          "driver-nowhere",
		Status:      domain.DriverStatusActive,
		IsAvailable: true,
	})
	// Has a location but is not active yet.
	driverRepo.AddDriver(&domain.Driver{
		ID:              "driver-pending",
		Status:          domain.DriverStatusPending,
		IsAvailable:     true,
		CurrentLocation: &domain.Location{Latitude: 12.97, Longitude: 77.59},
	})
	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newMatchingService(lockStore, driverRepo, rideRepo, nil)

	_, err := svc.Match(ctx, "ride-1")
	if !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusNoDrivers {
		t.Errorf("expected no_drivers status, got %s", rideRepo.GetRide("ride-1").Status)
	}
}

func TestMatch_ConcurrentAttemptIsRejected(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(requestedRide("ride-1"))

	lockStore := NewMockLockStore()
	lockStore.ForceRideAcquireFailure = true

	svc := newMatchingService(lockStore, NewMockDriverRepository(), rideRepo, nil)

	_, err := svc.Match(ctx, "ride-1")
	if !errors.Is(err, service.ErrMatchingInProgress) {
		t.Fatalf("expected ErrMatchingInProgress, got %v", err)
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusRequested {
		t.Errorf("ride status changed by rejected attempt: %s", rideRepo.GetRide("ride-1").Status)
	}
}

func TestMatch_RedeliveryAfterTerminalStateIsNoOp(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	rideRepo := NewMockRideRepository()
	lockStore := NewMockLockStore()

	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newMatchingService(lockStore, driverRepo, rideRepo, nil)

	// First delivery finds no drivers and parks the ride.
	if _, err := svc.Match(ctx, "ride-1"); !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}

	// Second delivery of the same event must not touch the ride again.
	updates := rideRepo.UpdateStatusFromCallCount
	_, err := svc.Match(ctx, "ride-1")
	if !errors.Is(err, service.ErrRideNotInRequestedState) {
		t.Fatalf("expected ErrRideNotInRequestedState, got %v", err)
	}
	if rideRepo.UpdateStatusFromCallCount != updates {
		t.Error("redelivery attempted another status update")
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusNoDrivers {
		t.Errorf("expected no_drivers status, got %s", rideRepo.GetRide("ride-1").Status)
	}
}

func TestMatch_MissingPickupLeavesRideRequested(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	ride := requestedRide("ride-1")
	ride.PassengerLocation = nil
	rideRepo.AddRide(ride)

	svc := newMatchingService(NewMockLockStore(), NewMockDriverRepository(), rideRepo, nil)

	_, err := svc.Match(ctx, "ride-1")
	if !errors.Is(err, service.ErrMissingPassengerLocation) {
		t.Fatalf("expected ErrMissingPassengerLocation, got %v", err)
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusRequested {
		t.Errorf("expected ride to stay requested, got %s", rideRepo.GetRide("ride-1").Status)
	}
}

func TestMatch_EmptyRideID(t *testing.T) {
	svc := newMatchingService(NewMockLockStore(), NewMockDriverRepository(), NewMockRideRepository(), nil)

	if _, err := svc.Match(context.Background(), ""); !errors.Is(err, service.ErrInvalidRideID) {
		t.Fatalf("expected ErrInvalidRideID, got %v", err)
	}
}

func TestMatch_RideNotFound(t *testing.T) {
	svc := newMatchingService(NewMockLockStore(), NewMockDriverRepository(), NewMockRideRepository(), nil)

	if _, err := svc.Match(context.Background(), "ride-missing"); err == nil {
		t.Fatal("expected error for missing ride")
	}
}
