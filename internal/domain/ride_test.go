package domain

import (
	"errors"
	"testing"
)

func TestCanTransition_ValidPaths(t *testing.T) {
	valid := []struct{ from, to RideStatus }{
		{RideStatusRequested, RideStatusDriverAssigned},
		{RideStatusRequested, RideStatusNoDrivers},
		{RideStatusRequested, RideStatusCancelled},
		{RideStatusDriverAssigned, RideStatusDriverArrived},
		{RideStatusDriverAssigned, RideStatusCancelled},
		{RideStatusDriverArrived, RideStatusInProgress},
		{RideStatusDriverArrived, RideStatusCancelled},
		{RideStatusInProgress, RideStatusCompleted},
		{RideStatusInProgress, RideStatusCancelled},
	}
	for _, tc := range valid {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be valid", tc.from, tc.to)
		}
	}
}

func TestCanTransition_InvalidPaths(t *testing.T) {
	invalid := []struct{ from, to RideStatus }{
		{RideStatusRequested, RideStatusDriverArrived},
		{RideStatusRequested, RideStatusCompleted},
		{RideStatusDriverAssigned, RideStatusDriverAssigned},
		{RideStatusDriverAssigned, RideStatusCompleted},
		{RideStatusCompleted, RideStatusCancelled},
		{RideStatusCancelled, RideStatusRequested},
		{RideStatusNoDrivers, RideStatusDriverAssigned},
	}
	for _, tc := range invalid {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []RideStatus{RideStatusCompleted, RideStatusCancelled, RideStatusNoDrivers} {
		if !IsTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
		for _, to := range []RideStatus{
			RideStatusRequested, RideStatusDriverAssigned, RideStatusNoDrivers,
			RideStatusDriverArrived, RideStatusInProgress, RideStatusCompleted, RideStatusCancelled,
		} {
			if CanTransition(s, to) {
				t.Errorf("terminal %s allows transition to %s", s, to)
			}
		}
	}
}

func TestTransition_UpdatesStatusAndTimestamp(t *testing.T) {
	ride := &Ride{ID: "ride-1", Status: RideStatusRequested}

	if err := ride.Transition(RideStatusDriverAssigned); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != RideStatusDriverAssigned {
		t.Errorf("expected driver_assigned, got %s", ride.Status)
	}
	if ride.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestTransition_InvalidReturnsTypedError(t *testing.T) {
	ride := &Ride{ID: "ride-1", Status: RideStatusCompleted}

	err := ride.Transition(RideStatusInProgress)
	if err == nil {
		t.Fatal("expected error")
	}

	var invalidErr *InvalidTransitionError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if invalidErr.From != RideStatusCompleted || invalidErr.To != RideStatusInProgress {
		t.Errorf("unexpected error detail: %v", invalidErr)
	}
	if ride.Status != RideStatusCompleted {
		t.Errorf("status mutated on rejected transition: %s", ride.Status)
	}
}
