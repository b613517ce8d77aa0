package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/service"
)

func completedRide(id string) *domain.Ride {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	return &domain.Ride{
		ID:          id,
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.RideStatusCompleted,
		DistanceKm:  6.0,
		SurgeFactor: 1.0,
		StartTime:   start,
		EndTime:     start.Add(18 * time.Minute),
	}
}

func TestCalculateFare_DurationVersusDistance(t *testing.T) {
	ride := completedRide("ride-1")

	// Duration price: 25 + 18*2 = 61. Distance price: 25 + 6*8 = 73.
	fare, err := service.CalculateFare(ride)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 73 {
		t.Errorf("expected fare 73, got %f", fare)
	}

	// A long slow trip prices by time instead.
	ride.EndTime = ride.StartTime.Add(45 * time.Minute)
	fare, _ = service.CalculateFare(ride)
	if fare != 115 { // 25 + 45*2
		t.Errorf("expected fare 115, got %f", fare)
	}
}

func TestCalculateFare_PartialMinutesRoundUp(t *testing.T) {
	ride := completedRide("ride-1")
	ride.DistanceKm = 0
	ride.EndTime = ride.StartTime.Add(10*time.Minute + 30*time.Second)

	fare, err := service.CalculateFare(ride)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 47 { // 25 + ceil(10.5)*2
		t.Errorf("expected fare 47, got %f", fare)
	}
}

func TestCalculateFare_SurgeMultipliesAndRounds(t *testing.T) {
	ride := completedRide("ride-1")
	ride.SurgeFactor = 1.5

	fare, err := service.CalculateFare(ride)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 110 { // round(73 * 1.5)
		t.Errorf("expected fare 110, got %f", fare)
	}
}

func TestCalculateFare_NoTimingFallsBackToEstimate(t *testing.T) {
	ride := completedRide("ride-1")
	ride.StartTime = time.Time{}
	ride.EndTime = time.Time{}
	ride.EstimatedFare = 88

	fare, err := service.CalculateFare(ride)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 88 {
		t.Errorf("expected estimated fare 88, got %f", fare)
	}

	ride.EstimatedFare = 0
	if _, err := service.CalculateFare(ride); !errors.Is(err, service.ErrMissingFareInputs) {
		t.Fatalf("expected ErrMissingFareInputs, got %v", err)
	}
}

func newSettlementFixture() (*service.SettlementService, *MockRideRepository, *MockUserRepository, *MockTransactionRepository, *FakePSP) {
	rideRepo := NewMockRideRepository()
	userRepo := NewMockUserRepository()
	txnRepo := NewMockTransactionRepository()
	psp := NewFakePSP()
	// No database: these tests stop before the commit transaction.
	svc := service.NewSettlementService(nil, rideRepo, userRepo, txnRepo, psp)
	return svc, rideRepo, userRepo, txnRepo, psp
}

func TestSettle_SecondCallReturnsExistingTransaction(t *testing.T) {
	ctx := context.Background()
	svc, rideRepo, userRepo, txnRepo, psp := newSettlementFixture()

	rideRepo.AddRide(completedRide("ride-1"))
	userRepo.AddUser(&domain.User{ID: "passenger-1", DefaultPaymentMethod: "pm_card"})

	existing := &domain.Transaction{
		ID:     "txn_1700000000000_42",
		RideID: "ride-1",
		Amount: 73,
		Status: domain.TransactionStatusCompleted,
	}
	txnRepo.AddTransaction(existing)

	txn, err := svc.Settle(ctx, "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.ID != existing.ID {
		t.Errorf("expected stored transaction %s, got %s", existing.ID, txn.ID)
	}
	if psp.ChargeCallCount != 0 {
		t.Error("expected no new charge for an already settled ride")
	}
}

func TestSettle_RejectsUnfinishedRide(t *testing.T) {
	ctx := context.Background()
	svc, rideRepo, _, _, _ := newSettlementFixture()

	ride := completedRide("ride-1")
	ride.Status = domain.RideStatusInProgress
	rideRepo.AddRide(ride)

	if _, err := svc.Settle(ctx, "ride-1"); !errors.Is(err, service.ErrRideNotCompleted) {
		t.Fatalf("expected ErrRideNotCompleted, got %v", err)
	}
}

func TestSettle_MissingPaymentMethodMarksRideFailed(t *testing.T) {
	ctx := context.Background()
	svc, rideRepo, userRepo, _, psp := newSettlementFixture()

	rideRepo.AddRide(completedRide("ride-1"))
	userRepo.AddUser(&domain.User{ID: "passenger-1"})

	if _, err := svc.Settle(ctx, "ride-1"); !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("expected failed payment status, got %s", ride.PaymentStatus)
	}
	if ride.PaymentError == "" {
		t.Error("expected a recorded payment error")
	}
	if psp.ChargeCallCount != 0 {
		t.Error("charge attempted without a payment method")
	}
}

func TestSettle_ProviderFailureMarksRideFailed(t *testing.T) {
	ctx := context.Background()
	svc, rideRepo, userRepo, txnRepo, psp := newSettlementFixture()

	rideRepo.AddRide(completedRide("ride-1"))
	userRepo.AddUser(&domain.User{ID: "passenger-1", DefaultPaymentMethod: "pm_card"})
	psp.ChargeError = ErrMockDeclined

	if _, err := svc.Settle(ctx, "ride-1"); !errors.Is(err, ErrMockDeclined) {
		t.Fatalf("expected charge error, got %v", err)
	}

	ride := rideRepo.GetRide("ride-1")
	if ride.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("expected failed payment status, got %s", ride.PaymentStatus)
	}
	if txnRepo.CreateCallCount != 0 {
		t.Error("transaction persisted despite charge failure")
	}

	// The charge itself carried the fare in minor units.
	if psp.LastAmountMinor != 7300 { // fare 73 in paise
		t.Errorf("expected 7300 minor units, got %d", psp.LastAmountMinor)
	}
	if psp.LastCurrency != "inr" {
		t.Errorf("expected inr, got %s", psp.LastCurrency)
	}
	if psp.LastPaymentMethod != "pm_card" {
		t.Errorf("expected pm_card, got %s", psp.LastPaymentMethod)
	}
}
