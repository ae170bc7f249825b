package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"eventflex/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpay_VerifyPayment(t *testing.T) {
	gw := NewRazorpay("rzp_test_key", "key-secret", "hook-secret")
	ctx := context.Background()

	valid := Verification{
		OrderID:   "order_123",
		PaymentID: "pay_456",
		Signature: sign("key-secret", "order_123|pay_456"),
	}
	assert.NoError(t, gw.VerifyPayment(ctx, valid))

	tampered := valid
	tampered.PaymentID = "pay_999"
	assert.ErrorIs(t, gw.VerifyPayment(ctx, tampered), ErrInvalidSignature)

	unsigned := valid
	unsigned.Signature = ""
	assert.ErrorIs(t, gw.VerifyPayment(ctx, unsigned), ErrInvalidSignature)
}

func TestRazorpay_ParseWebhook(t *testing.T) {
	gw := NewRazorpay("rzp_test_key", "key-secret", "hook-secret")

	tests := []struct {
		name        string
		payload     string
		wantOutcome string
		wantReason  string
	}{
		{
			name:        "captured",
			payload:     `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"captured"}}}}`,
			wantOutcome: OutcomePaid,
		},
		{
			name:        "failed",
			payload:     `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","error_description":"card declined"}}}}`,
			wantOutcome: OutcomeFailed,
			wantReason:  "card declined",
		},
		{
			name:        "unrelated event",
			payload:     `{"event":"refund.created","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`,
			wantOutcome: OutcomeIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := gw.ParseWebhook([]byte(tt.payload), sign("hook-secret", tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, ev.Outcome)
			assert.Equal(t, "order_1", ev.OrderID)
			assert.Equal(t, "pay_1", ev.PaymentID)
			assert.Equal(t, tt.wantReason, ev.FailureReason)
			assert.NotEmpty(t, ev.ID)
		})
	}
}

func TestRazorpay_ParseWebhook_BadSignature(t *testing.T) {
	gw := NewRazorpay("rzp_test_key", "key-secret", "hook-secret")
	payload := []byte(`{"event":"payment.captured"}`)

	_, err := gw.ParseWebhook(payload, sign("wrong-secret", string(payload)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func stripeSignature(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, sign(secret, fmt.Sprintf("%d.%s", ts, payload)))
}

func TestStripe_ParseWebhook(t *testing.T) {
	gw := NewStripe("sk_test", "whsec_test")
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "last_payment_error": {"message": "insufficient funds"}}}
	}`, stripe.APIVersion))

	ev, err := gw.ParseWebhook(payload, stripeSignature("whsec_test", payload, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "pi_1", ev.OrderID)
	assert.Equal(t, OutcomeFailed, ev.Outcome)
	assert.Equal(t, "insufficient funds", ev.FailureReason)

	_, err = gw.ParseWebhook(payload, stripeSignature("other", payload, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripe_VerifyPayment_MismatchedIDs(t *testing.T) {
	gw := NewStripe("sk_test", "whsec_test")
	err := gw.VerifyPayment(context.Background(), Verification{OrderID: "pi_1", PaymentID: "pi_2"})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNew(t *testing.T) {
	gw, err := New(config.GatewayConfig{Provider: "razorpay", RatePerSecond: 5})
	require.NoError(t, err)
	assert.Equal(t, ProviderRazorpay, gw.Name())
	assert.IsType(t, &rateLimited{}, gw)

	gw, err = New(config.GatewayConfig{Provider: "STRIPE"})
	require.NoError(t, err)
	assert.Equal(t, ProviderStripe, gw.Name())

	_, err = New(config.GatewayConfig{Provider: "paypal"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestWithRateLimit_ContextCancelled(t *testing.T) {
	gw := WithRateLimit(NewRazorpay("k", "s", "w"), 1)
	limited := gw.(*rateLimited)
	require.True(t, limited.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gw.VerifyPayment(ctx, Verification{OrderID: "o", PaymentID: "p", Signature: "x"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}
