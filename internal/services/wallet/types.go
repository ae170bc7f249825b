package wallet

import (
	"time"

	"eventflex/internal/models"
)

// RecentTransactions is how many ledger rows Summary includes.
const RecentTransactions = 10

// Summary is the wallet overview shown on every role's wallet page.
type Summary struct {
	Wallet       *models.Wallet       `json:"wallet"`
	Transactions []models.Transaction `json:"recent_transactions"`
}

// CreditRequest describes one ledger credit.
type CreditRequest struct {
	UserID      uint
	Amount      int64
	Category    string
	Reference   string
	Description string
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit()
	RecordCacheMiss()

	// Transaction metrics
	RecordTransaction(txType, category string, amount int64)
}
