package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment is a host deposit collected through the payment gateway's hosted checkout.
type Payment struct {
	gorm.Model
	HostID           uint       `gorm:"not null;index" json:"host_id"`
	EventID          uint       `gorm:"not null;index" json:"event_id"`
	EscrowID         uint       `gorm:"index" json:"escrow_id"`
	Gateway          string     `gorm:"not null" json:"gateway"`
	OrderID          string     `gorm:"uniqueIndex;not null" json:"order_id"`
	GatewayPaymentID string     `gorm:"index" json:"gateway_payment_id,omitempty"`
	Receipt          string     `json:"receipt"`
	Amount           int64      `gorm:"not null" json:"amount"`
	Currency         string     `gorm:"default:'INR'" json:"currency"`
	Status           string     `gorm:"default:'created';index" json:"status"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}
