package repositories

import (
	"context"
	"fmt"
	"time"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	// GetByUserIDForUpdate locks the wallet row until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error)
	// Credit adds amount to the user's wallet and appends entry to the ledger.
	Credit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error)
	// Debit subtracts amount, failing with ErrInsufficientBalance instead of going negative.
	Debit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error)
	ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error)
	SumByCategory(ctx context.Context, userID uint, category string, since time.Time) (int64, error)
	// SumWithdrawalReversals totals reversal credits for withdrawals created at or after since.
	SumWithdrawalReversals(ctx context.Context, userID uint, since time.Time) (int64, error)
	WithTx(tx *gorm.DB) WalletRepository
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepository{db: tx}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", translate(err))
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, translate(err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, translate(err)
	}
	return &wallet, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error) {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.record(ctx, userID, amount, models.TransactionCredit, entry)
}

func (r *walletRepository) Debit(ctx context.Context, userID uint, amount int64, entry *models.Transaction) (*models.Wallet, error) {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}
	return r.record(ctx, userID, amount, models.TransactionDebit, entry)
}

func (r *walletRepository) record(ctx context.Context, userID uint, amount int64, direction string, entry *models.Transaction) (*models.Wallet, error) {
	wallet, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry.WalletID = wallet.ID
	entry.UserID = userID
	entry.Type = direction
	entry.Amount = amount
	entry.BalanceAfter = wallet.Balance
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return wallet, nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, total, err
}

func (r *walletRepository) SumByCategory(ctx context.Context, userID uint, category string, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND category = ? AND created_at >= ?", userID, category, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

func (r *walletRepository) SumWithdrawalReversals(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Joins("JOIN withdrawals ON withdrawals.reference = transactions.reference AND withdrawals.user_id = transactions.user_id").
		Where("transactions.user_id = ? AND transactions.category = ? AND withdrawals.created_at >= ?",
			userID, models.CategoryWithdrawalReversal, since).
		Select("COALESCE(SUM(transactions.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum withdrawal reversals: %w", err)
	}
	return total, nil
}
