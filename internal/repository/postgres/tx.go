package postgres

import (
	"context"
	"database/sql"

	"ridehail/internal/repository"
)

// TxRunner is a PostgreSQL implementation of repository.TxRunner.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new PostgreSQL transaction runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn against transaction-scoped repositories, committing on nil
// and rolling back on error.
func (r *TxRunner) InTx(ctx context.Context, fn func(rides repository.RideRepository, drivers repository.DriverRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(NewRideRepositoryWithTx(tx), NewDriverRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure TxRunner implements the interface.
var _ repository.TxRunner = (*TxRunner)(nil)
