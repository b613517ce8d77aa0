package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of
// repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a
// database transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create persists a transaction record.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, ride_id, passenger_id, driver_id, amount, currency, payment_method, status, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.RideID,
		txn.PassengerID,
		txn.DriverID,
		txn.Amount,
		txn.Currency,
		txn.PaymentMethod,
		txn.Status,
		txn.Type,
		txn.CreatedAt,
	)
	return err
}

// GetByRideID retrieves the transaction for a ride.
func (r *TransactionRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Transaction, error) {
	query := `
		SELECT id, ride_id, passenger_id, driver_id, amount, currency, payment_method, status, type, created_at
		FROM transactions WHERE ride_id = $1
	`

	var txn domain.Transaction
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&txn.ID,
		&txn.RideID,
		&txn.PassengerID,
		&txn.DriverID,
		&txn.Amount,
		&txn.Currency,
		&txn.PaymentMethod,
		&txn.Status,
		&txn.Type,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &txn, nil
}
