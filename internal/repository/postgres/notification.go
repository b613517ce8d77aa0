package postgres

import (
	"context"
	"database/sql"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, ride_id, ride_status, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		nullString(n.RideID),
		nullString(string(n.Status)),
		n.Read,
		n.CreatedAt,
	)
	return err
}

// GetByUserID retrieves a user's notifications, newest first.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, title, message, COALESCE(ride_id, ''), COALESCE(ride_status, ''), read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.RideID, &n.Status, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead marks a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// LocationUpdateRepository is a PostgreSQL implementation of
// repository.LocationUpdateRepository.
type LocationUpdateRepository struct {
	q Querier
}

// NewLocationUpdateRepository creates a new PostgreSQL heartbeat repository.
func NewLocationUpdateRepository(db *sql.DB) *LocationUpdateRepository {
	return &LocationUpdateRepository{q: db}
}

// Create appends a heartbeat row.
func (r *LocationUpdateRepository) Create(ctx context.Context, u *domain.LocationUpdate) error {
	query := `
		INSERT INTO location_updates (id, driver_id, lat, lng, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		u.ID,
		u.DriverID,
		u.Location.Latitude,
		u.Location.Longitude,
		u.Timestamp,
	)
	return err
}
