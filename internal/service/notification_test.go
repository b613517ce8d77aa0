package service

import (
	"context"
	"testing"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/tests"
)

func TestPassengerMessage(t *testing.T) {
	eta := time.Date(2026, 3, 10, 14, 35, 0, 0, time.UTC)

	cases := []struct {
		name      string
		ride      *domain.Ride
		wantTitle string
		wantBody  string
	}{
		{
			"driver assigned",
			&domain.Ride{Status: domain.RideStatusDriverAssigned, DriverName: "Ravi", EstimatedPickupTime: eta},
			"Driver Assigned",
			"Ravi is on the way. ETA: 2:35 PM",
		},
		{
			"driver assigned without eta",
			&domain.Ride{Status: domain.RideStatusDriverAssigned, DriverName: "Ravi"},
			"Driver Assigned",
			"Ravi is on the way. ETA: Unknown",
		},
		{
			"driver arrived",
			&domain.Ride{Status: domain.RideStatusDriverArrived, DriverName: "Ravi"},
			"Driver Arrived",
			"Ravi has arrived at your pickup location",
		},
		{
			"in progress",
			&domain.Ride{Status: domain.RideStatusInProgress},
			"Ride Started",
			"Your ride has started",
		},
		{
			"completed",
			&domain.Ride{Status: domain.RideStatusCompleted, Fare: 115},
			"Ride Completed",
			"Your ride has been completed. Total fare: ₹115",
		},
		{
			"cancelled",
			&domain.Ride{Status: domain.RideStatusCancelled},
			"Ride Cancelled",
			"Your ride has been cancelled",
		},
		{
			"no drivers",
			&domain.Ride{Status: domain.RideStatusNoDrivers},
			"No Drivers Available",
			"No drivers are currently available. Please try again later",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			title, body := passengerMessage(c.ride)
			if title != c.wantTitle {
				t.Errorf("title: got %q, want %q", title, c.wantTitle)
			}
			if body != c.wantBody {
				t.Errorf("body: got %q, want %q", body, c.wantBody)
			}
		})
	}
}

func TestDriverMessage(t *testing.T) {
	title, body := driverMessage(&domain.Ride{
		Status:        domain.RideStatusDriverAssigned,
		PassengerName: "Asha",
	})
	if title != "New Ride Assigned" || body != "New ride request from Asha" {
		t.Errorf("got %q / %q", title, body)
	}

	_, body = driverMessage(&domain.Ride{Status: domain.RideStatusDriverAssigned})
	if body != "New ride request from a passenger" {
		t.Errorf("missing passenger name fallback: %q", body)
	}

	title, body = driverMessage(&domain.Ride{Status: domain.RideStatusCompleted, Fare: 115})
	if title != "Ride Completed" || body != "Ride completed. Earnings: ₹115" {
		t.Errorf("got %q / %q", title, body)
	}
}

func TestRideStatusChanged_NotifiesBothParties(t *testing.T) {
	ctx := context.Background()

	userRepo := tests.NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "passenger-1", Name: "Asha", FCMToken: "tok-passenger"})

	driverRepo := tests.NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Ravi", FCMToken: "tok-driver"})

	notificationRepo := tests.NewMockNotificationRepository()
	pusher := tests.NewMockPusher()

	svc := NewNotificationService(notificationRepo, userRepo, driverRepo, pusher, nil)

	svc.RideStatusChanged(ctx, &domain.Ride{
		ID:            "ride-1",
		PassengerID:   "passenger-1",
		PassengerName: "Asha",
		DriverID:      "driver-1",
		DriverName:    "Ravi",
		Status:        domain.RideStatusDriverAssigned,
	})

	if got := len(notificationRepo.ForUser("passenger-1")); got != 1 {
		t.Errorf("expected 1 passenger notification, got %d", got)
	}
	if got := len(notificationRepo.ForUser("driver-1")); got != 1 {
		t.Errorf("expected 1 driver notification, got %d", got)
	}

	pushes := pusher.Pushed()
	if len(pushes) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(pushes))
	}
	for _, p := range pushes {
		if p.Data["rideId"] != "ride-1" || p.Data["type"] != "ride_update" {
			t.Errorf("bad push payload: %+v", p.Data)
		}
		if p.Data["status"] != string(domain.RideStatusDriverAssigned) {
			t.Errorf("bad push status: %q", p.Data["status"])
		}
	}
}

func TestRideStatusChanged_PushFailureDoesNotBlockStorage(t *testing.T) {
	ctx := context.Background()

	userRepo := tests.NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "passenger-1", Name: "Asha", FCMToken: "tok-passenger"})

	notificationRepo := tests.NewMockNotificationRepository()
	pusher := tests.NewMockPusher()
	pusher.PushError = tests.ErrMockTimeout

	svc := NewNotificationService(notificationRepo, userRepo, tests.NewMockDriverRepository(), pusher, nil)

	svc.RideStatusChanged(ctx, &domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusCancelled,
	})

	if got := len(notificationRepo.ForUser("passenger-1")); got != 1 {
		t.Errorf("expected stored notification despite push failure, got %d", got)
	}
}

func TestRideStatusChanged_UnknownTokenSkipsPush(t *testing.T) {
	ctx := context.Background()

	userRepo := tests.NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: "passenger-1", Name: "Asha"})

	notificationRepo := tests.NewMockNotificationRepository()
	pusher := tests.NewMockPusher()

	svc := NewNotificationService(notificationRepo, userRepo, tests.NewMockDriverRepository(), pusher, nil)

	svc.RideStatusChanged(ctx, &domain.Ride{
		ID:          "ride-1",
		PassengerID: "passenger-1",
		Status:      domain.RideStatusInProgress,
	})

	if len(pusher.Pushed()) != 0 {
		t.Error("pushed without a device token")
	}
	if got := len(notificationRepo.ForUser("passenger-1")); got != 1 {
		t.Errorf("expected stored notification, got %d", got)
	}
}
