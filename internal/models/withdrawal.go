package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal statuses
const (
	WithdrawalRequested = "requested"
	WithdrawalProcessed = "processed"
	WithdrawalRejected  = "rejected"
)

type Withdrawal struct {
	gorm.Model
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	Amount          int64      `gorm:"not null" json:"amount"`
	Status          string     `gorm:"default:'requested';index" json:"status"`
	Reference       string     `gorm:"uniqueIndex;not null" json:"reference"`
	AccountName     string     `json:"account_name"`
	AccountMasked   string     `json:"account_masked"`
	IFSC            string     `json:"ifsc"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	RejectReason    string     `json:"reject_reason,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessedBy     *uint      `json:"processed_by,omitempty"`
}
