package domain

import "time"

// TransactionStatus represents the outcome of a payment transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// TransactionType classifies what a transaction paid for.
type TransactionType string

const (
	TransactionTypeRidePayment TransactionType = "ride_payment"
)

// Transaction is the settlement record created when a completed ride is paid.
type Transaction struct {
	ID            string // txn_<unix-ms>_<rand>
	RideID        string
	PassengerID   string
	DriverID      string
	Amount        float64
	Currency      string
	PaymentMethod string
	Status        TransactionStatus
	Type          TransactionType
	CreatedAt     time.Time
}
