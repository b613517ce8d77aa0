package repository

import (
	"context"

	"ridehail/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	// Create persists a notification for later retrieval.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByUserID retrieves a user's notifications, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead marks a notification as read.
	MarkRead(ctx context.Context, id string) error
}

// LocationUpdateRepository stores driver position heartbeats.
type LocationUpdateRepository interface {
	// Create appends a heartbeat row.
	Create(ctx context.Context, u *domain.LocationUpdate) error
}
