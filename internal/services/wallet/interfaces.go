package wallet

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
)

// Service defines the main wallet service interface
type Service interface {
	// Core wallet operations
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	EnsureWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	Summary(ctx context.Context, userID uint) (*Summary, error)
	Transactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error)

	// CreditTx credits inside the caller's transaction. The caller must call
	// Invalidate for the affected users once the transaction commits.
	CreditTx(ctx context.Context, tx *gorm.DB, req CreditRequest) (*models.Wallet, error)
	Invalidate(ctx context.Context, userIDs ...uint)

	// Withdrawals
	Withdraw(ctx context.Context, userID uint, amount int64) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error)
	ProcessWithdrawal(ctx context.Context, adminID, id uint, payoutReference string) (*models.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, adminID, id uint, reason string) (*models.Withdrawal, error)
}
