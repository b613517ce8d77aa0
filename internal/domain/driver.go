package domain

import "time"

// DriverStatus represents the onboarding status of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusPending  DriverStatus = "pending"
	DriverStatusRejected DriverStatus = "rejected"
	DriverStatusInactive DriverStatus = "inactive"
)

// Driver represents a driver's availability and location.
// Invariant: IsAvailable implies CurrentRideID is empty.
type Driver struct {
	ID              string
	Name            string
	Phone           string
	Status          DriverStatus
	IsAvailable     bool
	CurrentLocation *Location
	CurrentRideID   string
	Rating          float64
	RatingCount     int
	Earnings        float64
	TotalRides      int
	FCMToken        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasLocation reports whether the driver has a usable location for matching.
func (d *Driver) HasLocation() bool {
	return d.CurrentLocation != nil
}

// Matchable reports whether the driver is eligible to be offered a ride.
func (d *Driver) Matchable() bool {
	return d.Status == DriverStatusActive && d.IsAvailable && d.HasLocation()
}
