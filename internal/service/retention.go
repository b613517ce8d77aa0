package service

import (
	"context"
	"log"
	"time"

	"ridehail/internal/observability"
	"ridehail/internal/repository"
)

// Data retention windows.
const (
	rideArchiveAfter       = 90 * 24 * time.Hour
	heartbeatRetention     = 7 * 24 * time.Hour
	readNotificationMaxAge = 30 * 24 * time.Hour
	archiveBatchSize       = 500
)

// RetentionService prunes aged operational data and produces monthly
// activity reports.
type RetentionService struct {
	repo repository.RetentionRepository
	now  func() time.Time
}

// NewRetentionService creates a new RetentionService.
func NewRetentionService(repo repository.RetentionRepository) *RetentionService {
	return &RetentionService{repo: repo, now: time.Now}
}

// Sweep runs one full housekeeping pass: archive old terminal rides in
// batches, drop stale heartbeats, drop old read notifications, and on the
// first of the month write the previous month's report.
func (s *RetentionService) Sweep(ctx context.Context) error {
	now := s.now()

	archived, err := s.archiveOldRides(ctx, now)
	if err != nil {
		return err
	}

	heartbeats, err := s.repo.DeleteLocationUpdatesBefore(ctx, now.Add(-heartbeatRetention))
	if err != nil {
		return err
	}
	observability.RetentionRowsTotal.WithLabelValues("location_updates").Add(float64(heartbeats))

	notifications, err := s.repo.DeleteReadNotificationsBefore(ctx, now.Add(-readNotificationMaxAge))
	if err != nil {
		return err
	}
	observability.RetentionRowsTotal.WithLabelValues("notifications").Add(float64(notifications))

	log.Printf("retention sweep: archived %d rides, deleted %d heartbeats, %d notifications",
		archived, heartbeats, notifications)

	if now.Day() == 1 {
		if err := s.GenerateMonthlyReport(ctx, now.AddDate(0, -1, 0)); err != nil {
			return err
		}
	}

	return nil
}

// archiveOldRides flags terminal rides past the archive window, looping so a
// single sweep catches up even after downtime without one giant statement.
func (s *RetentionService) archiveOldRides(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-rideArchiveAfter)

	total := 0
	for {
		n, err := s.repo.ArchiveRidesBefore(ctx, cutoff, archiveBatchSize)
		if err != nil {
			return total, err
		}
		total += n
		observability.RetentionRowsTotal.WithLabelValues("rides_archived").Add(float64(n))
		if n < archiveBatchSize {
			return total, nil
		}
	}
}

// GenerateMonthlyReport aggregates and stores the report for the month
// containing the given time.
func (s *RetentionService) GenerateMonthlyReport(ctx context.Context, month time.Time) error {
	report, err := s.repo.MonthlyStats(ctx, month)
	if err != nil {
		return err
	}
	report.GeneratedAt = s.now()

	if err := s.repo.SaveMonthlyReport(ctx, report); err != nil {
		return err
	}

	log.Printf("monthly report %d-%02d: %d rides, %.0f revenue",
		report.Year, report.Month, report.TotalRides, report.TotalRevenue)
	return nil
}
