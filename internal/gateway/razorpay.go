package gateway

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/tidwall/gjson"
)

type razorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpay(keyID, keySecret, webhookSecret string) Gateway {
	return &razorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

func (g *razorpayGateway) Name() string { return ProviderRazorpay }

func (g *razorpayGateway) SignatureHeader() string { return "X-Razorpay-Signature" }

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing id")
	}
	return &Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		KeyID:    g.keyID,
	}, nil
}

// VerifyPayment checks the checkout signature, hex(HMAC_SHA256(order_id|payment_id, key_secret)).
func (g *razorpayGateway) VerifyPayment(_ context.Context, v Verification) error {
	params := map[string]interface{}{
		"razorpay_order_id":   v.OrderID,
		"razorpay_payment_id": v.PaymentID,
	}
	if v.Signature == "" || !utils.VerifyPaymentSignature(params, v.Signature, g.keySecret) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *razorpayGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "" || !utils.VerifyWebhookSignature(string(payload), signature, g.webhookSecret) {
		return nil, ErrInvalidSignature
	}
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("razorpay webhook: malformed payload")
	}

	doc := gjson.ParseBytes(payload)
	entity := doc.Get("payload.payment.entity")
	ev := &WebhookEvent{
		Type:      doc.Get("event").String(),
		PaymentID: entity.Get("id").String(),
		OrderID:   entity.Get("order_id").String(),
	}
	if ev.OrderID == "" {
		ev.OrderID = doc.Get("payload.order.entity.id").String()
	}
	ev.ID = ev.Type + ":" + ev.OrderID + ":" + ev.PaymentID

	switch ev.Type {
	case "payment.captured", "order.paid":
		ev.Outcome = OutcomePaid
	case "payment.failed":
		ev.Outcome = OutcomeFailed
		ev.FailureReason = entity.Get("error_description").String()
	default:
		ev.Outcome = OutcomeIgnored
	}
	return ev, nil
}
