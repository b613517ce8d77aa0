package tests

import (
	"context"
	"errors"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

func newDriverService(locationStore *MockLocationStore, driverRepo *MockDriverRepository, heartbeatRepo repository.LocationUpdateRepository) *service.DriverService {
	return service.NewDriverService(locationStore, nil, driverRepo, heartbeatRepo)
}

func TestRegisterDriver_StartsPendingAndUnavailable(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo, nil)

	driver, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name:  "Ravi",
		Phone: "+919900112233",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Status != domain.DriverStatusPending {
		t.Errorf("expected pending status, got %s", driver.Status)
	}
	if driver.IsAvailable {
		t.Error("new drivers must not be available before activation")
	}
	if driver.ID == "" {
		t.Error("expected a generated driver ID")
	}
}

func TestSetAvailability_RequiresActiveDriver(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-1",
		Status: domain.DriverStatusPending,
	})

	svc := newDriverService(NewMockLocationStore(), driverRepo, nil)

	err := svc.SetAvailability(ctx, "driver-1", true)
	if !errors.Is(err, service.ErrDriverNotActive) {
		t.Fatalf("expected ErrDriverNotActive, got %v", err)
	}
	if driverRepo.GetDriver("driver-1").IsAvailable {
		t.Error("pending driver became available")
	}
}

func TestSetAvailability_ActivationUnblocksDriver(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-1",
		Status: domain.DriverStatusPending,
	})

	svc := newDriverService(NewMockLocationStore(), driverRepo, nil)

	if err := svc.Activate(ctx, "driver-1"); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := svc.SetAvailability(ctx, "driver-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !driverRepo.GetDriver("driver-1").IsAvailable {
		t.Error("active driver not marked available")
	}
}

func TestSetAvailability_GoingOfflineRemovesGeoEntry(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:          "driver-1",
		Status:      domain.DriverStatusActive,
		IsAvailable: true,
	})

	locationStore := NewMockLocationStore()
	svc := newDriverService(locationStore, driverRepo, nil)

	if err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{
		DriverID: "driver-1", Lat: 12.97, Lng: 77.59,
	}); err != nil {
		t.Fatalf("location update failed: %v", err)
	}
	if !locationStore.HasLocation("driver-1") {
		t.Fatal("expected driver in the geo index")
	}

	if err := svc.SetAvailability(ctx, "driver-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locationStore.HasLocation("driver-1") {
		t.Error("offline driver still in the geo index")
	}
}

func TestUpdateLocation_WritesStoreRowAndHeartbeat(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-1",
		Status: domain.DriverStatusActive,
	})

	locationStore := NewMockLocationStore()
	heartbeats := NewMockLocationUpdateRepository()
	svc := newDriverService(locationStore, driverRepo, heartbeats)

	err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{
		DriverID: "driver-1", Lat: 12.9716, Lng: 77.5946,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !locationStore.HasLocation("driver-1") {
		t.Error("geo index not updated")
	}

	driver := driverRepo.GetDriver("driver-1")
	if driver.CurrentLocation == nil || driver.CurrentLocation.Latitude != 12.9716 {
		t.Errorf("driver row location not updated: %v", driver.CurrentLocation)
	}

	if heartbeats.CountUpdates() != 1 {
		t.Errorf("expected 1 heartbeat row, got %d", heartbeats.CountUpdates())
	}
}

func TestUpdateLocation_RejectsInvalidCoordinates(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusActive})

	locationStore := NewMockLocationStore()
	svc := newDriverService(locationStore, driverRepo, nil)

	cases := []struct{ lat, lng float64 }{
		{91, 77.59},
		{-91, 77.59},
		{12.97, 181},
		{12.97, -181},
	}
	for _, c := range cases {
		err := svc.UpdateLocation(ctx, service.UpdateLocationRequest{
			DriverID: "driver-1", Lat: c.lat, Lng: c.lng,
		})
		if !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("(%f, %f): expected ErrInvalidLocation, got %v", c.lat, c.lng, err)
		}
	}
	if locationStore.UpdateLocationCallCount != 0 {
		t.Error("geo index written for invalid coordinates")
	}
}

func TestUpdateLocation_StoreFailurePropagates(t *testing.T) {
	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusActive})

	locationStore := NewMockLocationStore()
	locationStore.UpdateLocationError = ErrMockTimeout
	svc := newDriverService(locationStore, driverRepo, nil)

	err := svc.UpdateLocation(context.Background(), service.UpdateLocationRequest{
		DriverID: "driver-1", Lat: 12.97, Lng: 77.59,
	})
	if !errors.Is(err, ErrMockTimeout) {
		t.Fatalf("expected store error, got %v", err)
	}
}
