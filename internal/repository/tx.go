package repository

import "context"

// TxRunner executes fn against transaction-scoped ride and driver
// repositories. The transaction commits when fn returns nil and rolls back
// otherwise, so a failed driver acquire leaves both rows untouched.
type TxRunner interface {
	InTx(ctx context.Context, fn func(rides RideRepository, drivers DriverRepository) error) error
}
