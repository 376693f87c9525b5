package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no processor secret key was provided.
var ErrNotConfigured = errors.New("payment processor not configured")

// Intent is the processor-side payment intent returned to the storefront.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentCreator creates card payment intents for an amount in minor units.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error)
}

// StripeProcessor creates payment intents through the Stripe API.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor returns a processor for secretKey. An empty key yields a processor that
// fails every call with ErrNotConfigured.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	if secretKey == "" {
		return &StripeProcessor{}
	}
	return &StripeProcessor{api: client.New(secretKey, nil)}
}

// CreateIntent creates a card-only intent. No idempotency key is sent, so every call creates a new intent.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error) {
	if p.api == nil {
		return Intent{}, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
