package payment

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// StubProvider is used in development when no Stripe key is configured.
// Payments it creates are completed by posting to the webhook.
type StubProvider struct{}

func (StubProvider) Name() string { return "stub" }

func (StubProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := "stub_cs_" + uuid.NewString()
	u := req.SuccessURL
	if parsed, err := url.Parse(req.SuccessURL); err == nil && req.SuccessURL != "" {
		q := parsed.Query()
		q.Set("session_id", id)
		parsed.RawQuery = q.Encode()
		u = parsed.String()
	}
	return &CheckoutSession{ID: id, URL: u}, nil
}

func (StubProvider) CreatePaymentIntent(_ context.Context, _ IntentRequest) (*Intent, error) {
	id := "stub_pi_" + uuid.NewString()
	return &Intent{ID: id, ClientSecret: id + "_secret"}, nil
}
