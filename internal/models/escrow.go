package models

import (
	"time"

	"gorm.io/gorm"
)

// Escrow statuses
const (
	EscrowPendingPayment = "pending_payment"
	EscrowFunded         = "funded"
	EscrowReleased       = "released"
	EscrowRefunded       = "refunded"
	EscrowCancelled      = "cancelled"
)

// Escrow holds a host's deposit for an event until it is split between the
// organizer and the gigs, or refunded.
type Escrow struct {
	gorm.Model
	EventID             uint       `gorm:"not null;index" json:"event_id"`
	HostID              uint       `gorm:"not null;index" json:"host_id"`
	OrganizerID         *uint      `gorm:"index" json:"organizer_id"`
	PaymentID           uint       `gorm:"index" json:"payment_id"`
	Amount              int64      `gorm:"not null" json:"amount"`
	Currency            string     `gorm:"default:'INR'" json:"currency"`
	OrganizerPercentage int        `gorm:"not null" json:"organizer_percentage"`
	GigsPercentage      int        `gorm:"not null" json:"gigs_percentage"`
	Status              string     `gorm:"default:'pending_payment';index" json:"status"`
	Disputed            bool       `gorm:"default:false" json:"disputed"`
	OrganizerShare      int64      `json:"organizer_share"`
	GigsShare           int64      `json:"gigs_share"`
	FundedAt            *time.Time `json:"funded_at,omitempty"`
	ReleasedAt          *time.Time `json:"released_at,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
}
