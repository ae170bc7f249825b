package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
	"github.com/tidwall/gjson"
)

// stripeGateway maps orders onto PaymentIntents; the intent ID doubles as the
// order ID and the payment ID.
type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *stripeGateway) Name() string { return ProviderStripe }

func (g *stripeGateway) SignatureHeader() string { return "Stripe-Signature" }

func (g *stripeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", receipt)
	for k, v := range notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent create: %w", err)
	}
	return &Order{
		ID:           pi.ID,
		Amount:       amount,
		Currency:     currency,
		Receipt:      receipt,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// VerifyPayment asks Stripe for the intent state; checkout carries no signature.
func (g *stripeGateway) VerifyPayment(ctx context.Context, v Verification) error {
	if v.PaymentID != v.OrderID {
		return ErrInvalidSignature
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(v.OrderID, params)
	if err != nil {
		return fmt.Errorf("stripe payment intent get: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return ErrPaymentNotPaid
	}
	return nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	obj := gjson.ParseBytes(event.Data.Raw)
	ev := &WebhookEvent{
		ID:        event.ID,
		Type:      event.Type,
		OrderID:   obj.Get("id").String(),
		PaymentID: obj.Get("id").String(),
	}
	switch event.Type {
	case "payment_intent.succeeded":
		ev.Outcome = OutcomePaid
	case "payment_intent.payment_failed":
		ev.Outcome = OutcomeFailed
		ev.FailureReason = obj.Get("last_payment_error.message").String()
	default:
		ev.Outcome = OutcomeIgnored
	}
	return ev, nil
}
