package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
	"ridehail/internal/repository/postgres"
)

// Fare parameters, in rupees.
const (
	baseFare      = 25.0
	perMinuteRate = 2.0
	perKmRate     = 8.0

	platformCommission = 0.20

	fareCurrency = "inr"
)

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	// Charge collects the given amount in minor currency units and returns
	// a provider reference.
	Charge(ctx context.Context, amountMinor int64, currency, paymentMethod string) (string, error)
}

// MockPSP is a PSP that always succeeds. Used in tests and local setups.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge simulates a payment charge. Always succeeds.
func (p *MockPSP) Charge(ctx context.Context, amountMinor int64, currency, paymentMethod string) (string, error) {
	return fmt.Sprintf("mock_%d", time.Now().UnixNano()), nil
}

// SettlementService prices completed rides and collects payment.
type SettlementService struct {
	db              *sql.DB
	rideRepo        repository.RideRepository
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	psp             PSP
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	psp PSP,
) *SettlementService {
	return &SettlementService{
		db:              db,
		rideRepo:        rideRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		psp:             psp,
	}
}

// CalculateFare prices a completed ride. The duration fare always applies;
// when the trip distance is known the fare is the higher of the duration and
// distance prices. Surge multiplies the result, and the final amount is
// rounded to a whole rupee.
func CalculateFare(ride *domain.Ride) (float64, error) {
	if ride.StartTime.IsZero() || ride.EndTime.IsZero() {
		// No trip timing recorded; fall back to the quoted estimate.
		if ride.EstimatedFare > 0 {
			return ride.EstimatedFare, nil
		}
		return 0, ErrMissingFareInputs
	}

	durationMinutes := math.Ceil(ride.EndTime.Sub(ride.StartTime).Minutes())
	fare := baseFare + durationMinutes*perMinuteRate

	if ride.DistanceKm > 0 {
		distanceFare := baseFare + ride.DistanceKm*perKmRate
		fare = math.Max(fare, distanceFare)
	}

	if ride.SurgeFactor > 1 {
		fare *= ride.SurgeFactor
	}

	return math.Round(fare), nil
}

// Settle collects payment for a completed ride. It is idempotent per ride:
// if a transaction already exists the stored result is returned unchanged,
// so the completion event can safely be redelivered.
func (s *SettlementService) Settle(ctx context.Context, rideID string) (*domain.Transaction, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}
	if ride.PassengerID == "" || ride.DriverID == "" {
		return nil, ErrMissingFareInputs
	}

	existing, err := s.transactionRepo.GetByRideID(ctx, rideID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	fare, err := CalculateFare(ride)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, ride.PassengerID)
	if err != nil {
		return nil, err
	}

	if user.DefaultPaymentMethod == "" {
		s.recordPaymentFailure(ctx, ride, "no payment method found")
		return nil, ErrInvalidPaymentMethod
	}

	if _, err := s.psp.Charge(ctx, int64(fare*100), fareCurrency, user.DefaultPaymentMethod); err != nil {
		s.recordPaymentFailure(ctx, ride, err.Error())
		return nil, err
	}

	txn := &domain.Transaction{
		ID:            newTransactionID(),
		RideID:        ride.ID,
		PassengerID:   ride.PassengerID,
		DriverID:      ride.DriverID,
		Amount:        fare,
		Currency:      fareCurrency,
		PaymentMethod: user.DefaultPaymentMethod,
		Status:        domain.TransactionStatusCompleted,
		Type:          domain.TransactionTypeRidePayment,
		CreatedAt:     time.Now(),
	}

	if err := s.commitSettlement(ctx, ride, txn, fare); err != nil {
		return nil, err
	}

	log.Printf("settled ride %s: fare %.0f, txn %s", ride.ID, fare, txn.ID)
	return txn, nil
}

// commitSettlement writes the transaction, the ride's payment fields, the
// driver's payout and the passenger's spend in one database transaction.
func (s *SettlementService) commitSettlement(ctx context.Context, ride *domain.Ride, txn *domain.Transaction, fare float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTransactionRepo := postgres.NewTransactionRepositoryWithTx(tx)
	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)
	txUserRepo := postgres.NewUserRepositoryWithTx(tx)

	if err = txTransactionRepo.Create(ctx, txn); err != nil {
		return err
	}

	ride.Fare = fare
	ride.PaymentStatus = domain.PaymentStatusCompleted
	ride.PaymentError = ""
	ride.TransactionID = txn.ID
	ride.UpdatedAt = time.Now()
	if err = txRideRepo.Update(ctx, ride); err != nil {
		return err
	}

	driverEarnings := fare * (1 - platformCommission)
	if err = txDriverRepo.CreditEarnings(ctx, ride.DriverID, driverEarnings); err != nil {
		return err
	}

	if err = txUserRepo.RecordSpend(ctx, ride.PassengerID, fare); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SettlementService) recordPaymentFailure(ctx context.Context, ride *domain.Ride, reason string) {
	ride.PaymentStatus = domain.PaymentStatusFailed
	ride.PaymentError = reason
	ride.UpdatedAt = time.Now()
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		log.Printf("record payment failure for ride %s failed: %v", ride.ID, err)
	}
}

func newTransactionID() string {
	return fmt.Sprintf("txn_%d_%d", time.Now().UnixMilli(), rand.Intn(1000000))
}
