package tests

import (
	"context"
	"errors"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

func assignedRide(id, driverID string) *domain.Ride {
	ride := requestedRide(id)
	ride.Status = domain.RideStatusDriverAssigned
	ride.DriverID = driverID
	ride.DriverName = "Ravi"
	return ride
}

func TestDriverArrived_UpdatesStatusAndNotifies(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	notifier := NewMockNotifier()
	rideRepo.AddRide(assignedRide("ride-1", "driver-1"))

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, notifier)

	ride, err := svc.DriverArrived(ctx, "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusDriverArrived {
		t.Errorf("expected driver_arrived, got %s", ride.Status)
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusDriverArrived {
		t.Error("status not persisted")
	}
	if len(notifier.Notifications()) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.Notifications()))
	}
}

func TestDriverArrived_RejectsWrongDriver(t *testing.T) {
	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(assignedRide("ride-1", "driver-1"))

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, nil)

	_, err := svc.DriverArrived(context.Background(), "ride-1", "driver-2")
	if !errors.Is(err, service.ErrDriverNotAssignedToRide) {
		t.Fatalf("expected ErrDriverNotAssignedToRide, got %v", err)
	}
}

func TestStartRide_RecordsStartTime(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	ride := assignedRide("ride-1", "driver-1")
	ride.Status = domain.RideStatusDriverArrived
	rideRepo.AddRide(ride)

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, nil)

	started, err := svc.StartRide(ctx, "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.RideStatusInProgress {
		t.Errorf("expected in_progress, got %s", started.Status)
	}
	if started.StartTime.IsZero() {
		t.Error("expected start time to be recorded")
	}
}

func TestStartRide_RejectsOutOfOrderTransition(t *testing.T) {
	rideRepo := NewMockRideRepository()
	// Still driver_assigned; the driver has not arrived yet.
	rideRepo.AddRide(assignedRide("ride-1", "driver-1"))

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, nil)

	_, err := svc.StartRide(context.Background(), "ride-1", "driver-1")
	var invalidErr *domain.InvalidTransitionError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if rideRepo.GetRide("ride-1").Status != domain.RideStatusDriverAssigned {
		t.Error("rejected transition mutated the stored ride")
	}
}

func TestCancelRide_DriverlessRide(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	notifier := NewMockNotifier()
	rideRepo.AddRide(requestedRide("ride-1"))

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, notifier)

	ride, err := svc.CancelRide(ctx, service.CancelRideRequest{RideID: "ride-1", Reason: "changed plans"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusCancelled {
		t.Errorf("expected cancelled, got %s", ride.Status)
	}
	if ride.CancelReason != "changed plans" {
		t.Errorf("expected cancel reason to persist, got %q", ride.CancelReason)
	}
	if len(notifier.Notifications()) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.Notifications()))
	}
}

func TestCancelRide_AlreadyCancelled(t *testing.T) {
	rideRepo := NewMockRideRepository()
	ride := requestedRide("ride-1")
	ride.Status = domain.RideStatusCancelled
	rideRepo.AddRide(ride)

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, nil)

	_, err := svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: "ride-1"})
	if !errors.Is(err, service.ErrRideAlreadyCancelled) {
		t.Fatalf("expected ErrRideAlreadyCancelled, got %v", err)
	}
}

func TestCancelRide_CompletedRideIsRejected(t *testing.T) {
	rideRepo := NewMockRideRepository()
	ride := requestedRide("ride-1")
	ride.Status = domain.RideStatusCompleted
	rideRepo.AddRide(ride)

	svc := newRideService(rideRepo, NewMockDriverRepository(), nil, nil)

	_, err := svc.CancelRide(context.Background(), service.CancelRideRequest{RideID: "ride-1"})
	var invalidErr *domain.InvalidTransitionError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestRateDriver_UpdatesRunningAverage(t *testing.T) {
	ctx := context.Background()

	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()

	ride := assignedRide("ride-1", "driver-1")
	ride.Status = domain.RideStatusCompleted
	rideRepo.AddRide(ride)
	driverRepo.AddDriver(&domain.Driver{
		ID:          "driver-1",
		Status:      domain.DriverStatusActive,
		Rating:      4.0,
		RatingCount: 3,
	})

	svc := newRideService(rideRepo, driverRepo, nil, nil)

	if err := svc.RateDriver(ctx, "ride-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.RatingCount != 4 {
		t.Errorf("expected 4 ratings, got %d", driver.RatingCount)
	}
	if driver.Rating != 4.25 { // (4.0*3 + 5) / 4
		t.Errorf("expected rating 4.25, got %f", driver.Rating)
	}
}

func TestRateDriver_Validation(t *testing.T) {
	rideRepo := NewMockRideRepository()
	driverRepo := NewMockDriverRepository()

	inProgress := assignedRide("ride-active", "driver-1")
	inProgress.Status = domain.RideStatusInProgress
	rideRepo.AddRide(inProgress)

	svc := newRideService(rideRepo, driverRepo, nil, nil)
	ctx := context.Background()

	if err := svc.RateDriver(ctx, "ride-active", 0); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 0, got %v", err)
	}
	if err := svc.RateDriver(ctx, "ride-active", 6); !errors.Is(err, service.ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating for 6, got %v", err)
	}
	if err := svc.RateDriver(ctx, "ride-active", 4); !errors.Is(err, service.ErrRideNotCompleted) {
		t.Errorf("expected ErrRideNotCompleted, got %v", err)
	}
	if driverRepo.AddRatingCallCount != 0 {
		t.Error("rating recorded despite validation failure")
	}
}
