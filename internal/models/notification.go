package models

import "time"

// Notification types
const (
	NotifyInvitation     = "invitation"
	NotifyApplication    = "application"
	NotifyKYC            = "kyc"
	NotifyPayment        = "payment"
	NotifyPayout         = "payout"
	NotifyDispute        = "dispute"
	NotifyMessage        = "message"
	NotifyEventAssigned  = "event_assigned"
	NotifyAccountBlocked = "account"
)

type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"not null" json:"type"`
	Title     string     `gorm:"not null" json:"title"`
	Body      string     `json:"body"`
	Data      JSON       `gorm:"type:jsonb" json:"data,omitempty"`
	Read      bool       `gorm:"default:false;index" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
