package postgres

import (
	"context"
	"database/sql"
	"time"

	"ridehail/internal/domain"
)

// RetentionRepository is a PostgreSQL implementation of
// repository.RetentionRepository.
type RetentionRepository struct {
	q Querier
}

// NewRetentionRepository creates a new PostgreSQL retention repository.
func NewRetentionRepository(db *sql.DB) *RetentionRepository {
	return &RetentionRepository{q: db}
}

// ArchiveRidesBefore copies terminal rides older than cutoff into
// rides_archive and flags the source rows, at most limit rows per call.
// The CTE makes the copy and the flag update one atomic statement.
func (r *RetentionRepository) ArchiveRidesBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	query := `
		WITH batch AS (
			SELECT id FROM rides
			WHERE NOT archived
				AND status IN ('completed', 'cancelled', 'no_drivers')
				AND created_at < $1
			ORDER BY created_at
			LIMIT $2
		), copied AS (
			INSERT INTO rides_archive (ride_id, ride)
			SELECT r.id, to_jsonb(r.*) FROM rides r
			WHERE r.id IN (SELECT id FROM batch)
			ON CONFLICT (ride_id) DO NOTHING
		)
		UPDATE rides SET archived = TRUE, updated_at = NOW()
		WHERE id IN (SELECT id FROM batch)
	`
	result, err := r.q.ExecContext(ctx, query, cutoff, limit)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// DeleteLocationUpdatesBefore removes heartbeat rows older than cutoff.
func (r *RetentionRepository) DeleteLocationUpdatesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM location_updates WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// DeleteReadNotificationsBefore removes read notifications older than cutoff.
func (r *RetentionRepository) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// MonthlyStats aggregates completed rides and revenue for the month
// containing the given time.
func (r *RetentionRepository) MonthlyStats(ctx context.Context, month time.Time) (*domain.MonthlyReport, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(fare) FILTER (WHERE status = 'completed'), 0),
			COALESCE(SUM(distance_km) FILTER (WHERE status = 'completed'), 0)
		FROM rides
		WHERE created_at >= $1 AND created_at < $2
	`

	report := domain.MonthlyReport{
		Year:  start.Year(),
		Month: int(start.Month()),
	}
	err := r.q.QueryRowContext(ctx, query, start, end).Scan(
		&report.TotalRides,
		&report.CompletedRides,
		&report.CancelledRides,
		&report.TotalRevenue,
		&report.TotalDistanceKm,
	)
	if err != nil {
		return nil, err
	}

	if report.TotalRides > 0 {
		report.CompletionRate = float64(report.CompletedRides) / float64(report.TotalRides)
	}
	if report.CompletedRides > 0 {
		report.AverageFare = report.TotalRevenue / float64(report.CompletedRides)
		report.AverageDistance = report.TotalDistanceKm / float64(report.CompletedRides)
	}

	return &report, nil
}

// SaveMonthlyReport upserts a monthly report.
func (r *RetentionRepository) SaveMonthlyReport(ctx context.Context, report *domain.MonthlyReport) error {
	query := `
		INSERT INTO monthly_reports (year, month, total_rides, completed_rides, cancelled_rides, total_revenue, total_distance_km, completion_rate, average_fare, average_distance, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (year, month) DO UPDATE SET
			total_rides = EXCLUDED.total_rides,
			completed_rides = EXCLUDED.completed_rides,
			cancelled_rides = EXCLUDED.cancelled_rides,
			total_revenue = EXCLUDED.total_revenue,
			total_distance_km = EXCLUDED.total_distance_km,
			completion_rate = EXCLUDED.completion_rate,
			average_fare = EXCLUDED.average_fare,
			average_distance = EXCLUDED.average_distance,
			generated_at = EXCLUDED.generated_at
	`
	_, err := r.q.ExecContext(ctx, query,
		report.Year,
		report.Month,
		report.TotalRides,
		report.CompletedRides,
		report.CancelledRides,
		report.TotalRevenue,
		report.TotalDistanceKm,
		report.CompletionRate,
		report.AverageFare,
		report.AverageDistance,
		report.GeneratedAt,
	)
	return err
}
