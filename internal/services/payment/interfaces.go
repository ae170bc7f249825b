package payment

import (
	"context"

	"eventflex/internal/gateway"
	"eventflex/internal/models"
)

// Service collects host deposits through the payment gateway and funds the
// matching escrow once the gateway confirms the payment.
type Service interface {
	Deposit(ctx context.Context, hostID uint, req DepositRequest) (*DepositResult, error)
	// Verify is idempotent: a payment that is already paid is returned as is.
	Verify(ctx context.Context, hostID uint, v gateway.Verification) (*models.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	SignatureHeader() string
	ListPayments(ctx context.Context, hostID uint, limit, offset int) ([]models.Payment, int64, error)
}

type DepositRequest struct {
	EventID             uint  `json:"event_id" validate:"required"`
	Amount              int64 `json:"amount" validate:"required,gte=100"`
	OrganizerPercentage int   `json:"organizer_percentage" validate:"gte=0,lte=100"`
	GigsPercentage      int   `json:"gigs_percentage" validate:"gte=0,lte=100"`
}

// DepositResult is what the client hands to the gateway checkout.
type DepositResult struct {
	OrderID      string `json:"order_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Key          string `json:"key,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Gateway      string `json:"gateway"`
	PaymentID    uint   `json:"payment_id"`
	EscrowID     uint   `json:"escrow_id"`
}
