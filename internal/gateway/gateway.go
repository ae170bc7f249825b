// Package gateway talks to the external payment processor. Hosts fund escrows
// through it; everything after funding moves inside the platform ledger.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventflex/internal/config"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrPaymentNotPaid   = errors.New("payment not completed")
	ErrUnknownProvider  = errors.New("unknown payment gateway")
)

// Order is a gateway-side payment order the client completes in checkout.
type Order struct {
	ID           string `json:"order_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Receipt      string `json:"receipt"`
	KeyID        string `json:"key_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Verification is what the checkout returns to the client after payment.
type Verification struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature"`
}

// Webhook outcomes
const (
	OutcomePaid    = "paid"
	OutcomeFailed  = "failed"
	OutcomeIgnored = "ignored"
)

// WebhookEvent is the provider-neutral view of a gateway notification.
type WebhookEvent struct {
	ID            string
	Type          string
	OrderID       string
	PaymentID     string
	Outcome       string
	FailureReason string
}

type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error)
	// VerifyPayment fails with ErrInvalidSignature or ErrPaymentNotPaid.
	VerifyPayment(ctx context.Context, v Verification) error
	// SignatureHeader names the HTTP header carrying the webhook signature.
	SignatureHeader() string
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// New builds the configured gateway, throttled to cfg.RatePerSecond outbound calls.
func New(cfg config.GatewayConfig) (Gateway, error) {
	var gw Gateway
	switch strings.ToLower(cfg.Provider) {
	case ProviderRazorpay, "":
		gw = NewRazorpay(cfg.KeyID, cfg.KeySecret, cfg.WebhookSecret)
	case ProviderStripe:
		gw = NewStripe(cfg.KeySecret, cfg.WebhookSecret)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	return WithRateLimit(gw, cfg.RatePerSecond), nil
}
