package models

import "time"

// Ledger directions
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Ledger categories
const (
	CategoryEscrowRelease      = "escrow_release"
	CategoryEscrowRefund       = "escrow_refund"
	CategoryWithdrawal         = "withdrawal"
	CategoryWithdrawalReversal = "withdrawal_reversal"
)

// Transaction is one wallet ledger row. BalanceAfter lets statements be
// rendered without replaying history.
type Transaction struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	WalletID     uint      `gorm:"not null;index" json:"wallet_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"not null" json:"type"`
	Category     string    `gorm:"not null;index" json:"category"`
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Reference    string    `gorm:"index" json:"reference"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
