package domain

import "time"

// User represents a passenger in the system.
type User struct {
	ID                   string
	Name                 string
	Phone                string
	FCMToken             string
	DefaultPaymentMethod string
	TotalRides           int
	TotalSpent           float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
