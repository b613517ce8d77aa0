package service

import (
	"context"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/tests"
)

func TestCalculateSurgeFactor(t *testing.T) {
	config := DefaultSurgeConfig()

	cases := []struct {
		name   string
		supply int
		demand int
		want   float64
	}{
		{"no demand", 10, 0, 1.0},
		{"balanced", 10, 10, 1.0},
		{"just under low ratio", 10, 11, 1.0},
		{"low surge", 10, 12, 1.25},
		{"medium surge", 10, 15, 1.5},
		{"high surge", 10, 20, 2.0},
		{"ratio capped at max", 2, 40, 2.0},
		{"no supply no demand", 0, 0, 1.0},
		{"no supply with demand", 0, 3, 2.0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := calculateSurgeFactor(c.supply, c.demand, config)
			if got != c.want {
				t.Errorf("supply=%d demand=%d: got %.2f, want %.2f", c.supply, c.demand, got, c.want)
			}
		})
	}
}

func TestGetFactor_CountsOpenRequestsNearby(t *testing.T) {
	ctx := context.Background()

	// One available driver near the point.
	locationStore := tests.NewMockLocationStore()
	locationStore.SetLocations([]redis.DriverLocation{
		{DriverID: "driver-1", Lat: 12.97, Lng: 77.59},
	})

	rideRepo := tests.NewMockRideRepository()
	near := &domain.Location{Latitude: 12.9716, Longitude: 77.5946}
	far := &domain.Location{Latitude: 13.20, Longitude: 77.80}
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", Status: domain.RideStatusRequested, PassengerLocation: near})
	rideRepo.AddRide(&domain.Ride{ID: "ride-2", Status: domain.RideStatusRequested, PassengerLocation: near})
	rideRepo.AddRide(&domain.Ride{ID: "ride-3", Status: domain.RideStatusCompleted, PassengerLocation: near})
	rideRepo.AddRide(&domain.Ride{ID: "ride-4", Status: domain.RideStatusRequested, PassengerLocation: far})
	rideRepo.AddRide(&domain.Ride{ID: "ride-5", Status: domain.RideStatusRequested})

	svc := NewSurgeService(locationStore, rideRepo)

	// Supply 1, demand 2: ratio 2.0 hits the high band.
	factor := svc.GetFactor(ctx, 12.9716, 77.5946)
	if factor != 2.0 {
		t.Errorf("expected 2.0, got %.2f", factor)
	}
}

func TestGetFactor_RedisFailureNeverCausesFalseSurge(t *testing.T) {
	ctx := context.Background()

	locationStore := tests.NewMockLocationStore()
	locationStore.CountNearbyError = tests.ErrMockTimeout

	rideRepo := tests.NewMockRideRepository()
	near := &domain.Location{Latitude: 12.9716, Longitude: 77.5946}
	for _, id := range []string{"ride-1", "ride-2", "ride-3"} {
		rideRepo.AddRide(&domain.Ride{ID: id, Status: domain.RideStatusRequested, PassengerLocation: near})
	}

	svc := NewSurgeService(locationStore, rideRepo)

	if factor := svc.GetFactor(ctx, 12.9716, 77.5946); factor != 1.0 {
		t.Errorf("expected 1.0 when supply count fails, got %.2f", factor)
	}
}
