package repository

import (
	"context"
	"time"

	"ridehail/internal/domain"
)

// RetentionRepository covers the bulk housekeeping queries run by the
// retention job.
type RetentionRepository interface {
	// ArchiveRidesBefore flags terminal rides older than cutoff as archived,
	// at most limit rows per call. Returns the number of rides archived.
	ArchiveRidesBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)

	// DeleteLocationUpdatesBefore removes heartbeat rows older than cutoff.
	// Returns the number of rows deleted.
	DeleteLocationUpdatesBefore(ctx context.Context, cutoff time.Time) (int, error)

	// DeleteReadNotificationsBefore removes read notifications older than
	// cutoff. Returns the number of rows deleted.
	DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// MonthlyStats aggregates completed rides and revenue for the month
	// containing the given time.
	MonthlyStats(ctx context.Context, month time.Time) (*domain.MonthlyReport, error)

	// SaveMonthlyReport upserts a monthly report.
	SaveMonthlyReport(ctx context.Context, report *domain.MonthlyReport) error
}
