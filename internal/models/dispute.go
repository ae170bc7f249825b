package models

import (
	"time"

	"gorm.io/gorm"
)

// Dispute statuses
const (
	DisputeOpen     = "open"
	DisputeResolved = "resolved"
	DisputeRejected = "rejected"
)

type Dispute struct {
	gorm.Model
	EventID      uint       `gorm:"not null;index" json:"event_id"`
	EscrowID     *uint      `gorm:"index" json:"escrow_id"`
	RaisedBy     uint       `gorm:"not null;index" json:"raised_by"`
	RaisedByRole string     `gorm:"not null" json:"raised_by_role"`
	Reason       string     `gorm:"not null" json:"reason"`
	Status       string     `gorm:"default:'open';index" json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	RefundHost   bool       `gorm:"default:false" json:"refund_host"`
	ResolvedBy   *uint      `json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}
