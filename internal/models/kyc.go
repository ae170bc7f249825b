package models

import (
	"time"

	"gorm.io/gorm"
)

// KYC statuses
const (
	KYCNotSubmitted = "not_submitted"
	KYCPending      = "pending"
	KYCApproved     = "approved"
	KYCRejected     = "rejected"
)

type KYCVerification struct {
	gorm.Model
	UserID       uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Status       string     `gorm:"default:'not_submitted';index" json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy   *uint      `json:"reviewed_by,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// CanSubmit reports whether the user may (re)submit for review.
func (k *KYCVerification) CanSubmit() bool {
	return k.Status == KYCNotSubmitted || k.Status == KYCRejected
}
