package domain

import (
	"fmt"
	"time"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested      RideStatus = "requested"
	RideStatusDriverAssigned RideStatus = "driver_assigned"
	RideStatusNoDrivers      RideStatus = "no_drivers"
	RideStatusDriverArrived  RideStatus = "driver_arrived"
	RideStatusInProgress     RideStatus = "in_progress"
	RideStatusCompleted      RideStatus = "completed"
	RideStatusCancelled      RideStatus = "cancelled"
)

// PaymentStatus represents the settlement status of a ride's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Location is a geographic point in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ride represents one trip from request to settlement.
type Ride struct {
	ID                  string
	PassengerID         string
	PassengerName       string
	PassengerLocation   *Location
	Destination         *Location
	Status              RideStatus
	DriverID            string
	DriverName          string
	DriverPhone         string
	DriverLocation      *Location
	EstimatedPickupTime time.Time
	EstimatedFare       float64
	Fare                float64
	DistanceKm          float64
	SurgeFactor         float64
	PaymentStatus       PaymentStatus
	PaymentError        string
	TransactionID       string
	StartTime           time.Time
	EndTime             time.Time
	CancelReason        string
	Archived            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// rideTransitions is the authoritative set of valid status transitions.
// The matcher is the only writer of requested -> driver_assigned and
// requested -> no_drivers; all other transitions are client-initiated.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusRequested:      {RideStatusDriverAssigned, RideStatusNoDrivers, RideStatusCancelled},
	RideStatusDriverAssigned: {RideStatusDriverArrived, RideStatusCancelled},
	RideStatusDriverArrived:  {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress:     {RideStatusCompleted, RideStatusCancelled},
	RideStatusNoDrivers:      {},
	RideStatusCompleted:      {},
	RideStatusCancelled:      {},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to RideStatus) bool {
	for _, next := range rideTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from a status.
func IsTerminal(status RideStatus) bool {
	return len(rideTransitions[status]) == 0
}

// InvalidTransitionError is returned when a write path attempts a status
// change the state machine does not allow.
type InvalidTransitionError struct {
	RideID string
	From   RideStatus
	To     RideStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("ride %s: invalid transition %s -> %s", e.RideID, e.From, e.To)
}

// Transition moves the ride to the given status, validating against the
// transition table. On success it also bumps UpdatedAt.
func (r *Ride) Transition(to RideStatus) error {
	if !CanTransition(r.Status, to) {
		return &InvalidTransitionError{RideID: r.ID, From: r.Status, To: to}
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// HasPassengerLocation reports whether the pickup point is usable for matching.
func (r *Ride) HasPassengerLocation() bool {
	return r.PassengerLocation != nil
}
