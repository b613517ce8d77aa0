package domain

import "time"

// Notification is an in-app notification row, written alongside every push.
type Notification struct {
	ID        string
	UserID    string // passenger or driver ID
	Title     string
	Message   string
	RideID    string
	Status    RideStatus // ride status that produced the notification
	Read      bool
	CreatedAt time.Time
}

// LocationUpdate is an ephemeral driver location heartbeat. Rows are kept for
// a short window and purged by the retention job.
type LocationUpdate struct {
	ID        string
	DriverID  string
	Location  Location
	Timestamp time.Time
}

// MonthlyReport aggregates ride activity for one calendar month.
type MonthlyReport struct {
	Year            int
	Month           int
	TotalRides      int
	CompletedRides  int
	CancelledRides  int
	TotalRevenue    float64
	TotalDistanceKm float64
	CompletionRate  float64
	AverageFare     float64
	AverageDistance float64
	GeneratedAt     time.Time
}
