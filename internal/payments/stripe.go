package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripePSP charges ride fares through Stripe PaymentIntents.
type StripePSP struct{}

// NewStripePSP initializes the stripe client with the given API key.
func NewStripePSP(apiKey string) *StripePSP {
	stripe.Key = apiKey
	return &StripePSP{}
}

// Charge creates and confirms a PaymentIntent for the given amount in minor
// currency units.
func (s *StripePSP) Charge(ctx context.Context, amountMinor int64, currency, paymentMethod string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
	}
	if paymentMethod != "" {
		params.PaymentMethod = stripe.String(paymentMethod)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}
