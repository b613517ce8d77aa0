package repository

import (
	"context"

	"ridehail/internal/domain"
)

// TransactionRepository defines the persistence operations for payment
// transactions.
type TransactionRepository interface {
	// Create persists a transaction record.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByRideID retrieves the transaction for a ride, if any.
	GetByRideID(ctx context.Context, rideID string) (*domain.Transaction, error)
}
