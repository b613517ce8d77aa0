package service

import (
	"context"
	"testing"

	"ridehail/internal/domain"
	"ridehail/internal/tests"
)

func activeDriver(id string, lat, lng, rating float64) *domain.Driver {
	return &domain.Driver{
		ID:              id,
		Status:          domain.DriverStatusActive,
		IsAvailable:     true,
		CurrentLocation: &domain.Location{Latitude: lat, Longitude: lng},
		Rating:          rating,
	}
}

func rankedIDs(t *testing.T, driverRepo *tests.MockDriverRepository, ride *domain.Ride) []string {
	t.Helper()
	svc := &MatchingService{driverRepo: driverRepo}
	candidates, err := svc.rankCandidates(context.Background(), ride)
	if err != nil {
		t.Fatalf("rankCandidates failed: %v", err)
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.driver.ID)
	}
	return ids
}

func pickupRide(lat, lng float64) *domain.Ride {
	return &domain.Ride{
		ID:                "ride-1",
		Status:            domain.RideStatusRequested,
		PassengerLocation: &domain.Location{Latitude: lat, Longitude: lng},
	}
}

func TestRankCandidates_ClearlyCloserWinsOverRating(t *testing.T) {
	driverRepo := tests.NewMockDriverRepository()
	// Roughly 2 km north vs 10 km north of the pickup. 0.009 degrees of
	// latitude is about 1 km.
	driverRepo.AddDriver(activeDriver("driver-near", 12.9716+0.018, 77.5946, 3.5))
	driverRepo.AddDriver(activeDriver("driver-far", 12.9716+0.090, 77.5946, 5.0))

	ids := rankedIDs(t, driverRepo, pickupRide(12.9716, 77.5946))
	if len(ids) != 2 || ids[0] != "driver-near" {
		t.Fatalf("expected driver-near first, got %v", ids)
	}
}

func TestRankCandidates_NearTieDecidedByRating(t *testing.T) {
	driverRepo := tests.NewMockDriverRepository()
	// About 5.0 km and 5.8 km out: within the near-tie band, so the higher
	// rated driver should come first despite being slightly farther.
	driverRepo.AddDriver(activeDriver("driver-closer-lower", 12.9716+0.045, 77.5946, 4.2))
	driverRepo.AddDriver(activeDriver("driver-farther-higher", 12.9716+0.052, 77.5946, 4.9))

	ids := rankedIDs(t, driverRepo, pickupRide(12.9716, 77.5946))
	if len(ids) != 2 || ids[0] != "driver-farther-higher" {
		t.Fatalf("expected driver-farther-higher first, got %v", ids)
	}
}

func TestRankCandidates_ExcludesDriversWithoutLocation(t *testing.T) {
	driverRepo := tests.NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:          "driver-nowhere",
		Status:      domain.DriverStatusActive,
		IsAvailable: true,
	})
	driverRepo.AddDriver(activeDriver("driver-located", 12.98, 77.60, 4.0))

	ids := rankedIDs(t, driverRepo, pickupRide(12.9716, 77.5946))
	if len(ids) != 1 || ids[0] != "driver-located" {
		t.Fatalf("expected only driver-located, got %v", ids)
	}
}
