package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventflex/internal/config"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/notification"

	"gorm.io/gorm"
)

type service struct {
	users       repositories.UserRepository
	wallets     repositories.WalletRepository
	withdrawals repositories.WithdrawalRepository
	tx          repositories.Transactor
	cache       cache.Cache
	notifier    notification.Notifier
	audit       audit.Recorder
	metrics     MetricsCollector

	withdrawMin int64
	dailyLimit  int64
	currency    string
	now         func() time.Time
}

// Dependencies groups the collaborators of the wallet service.
type Dependencies struct {
	Users       repositories.UserRepository
	Wallets     repositories.WalletRepository
	Withdrawals repositories.WithdrawalRepository
	Tx          repositories.Transactor
	Cache       cache.Cache
	Notifier    notification.Notifier
	Audit       audit.Recorder
	Metrics     MetricsCollector
}

// NewService creates a new wallet service
func NewService(deps Dependencies, cfg config.WalletConfig, currency string) Service {
	if deps.Wallets == nil || deps.Users == nil || deps.Withdrawals == nil {
		panic("wallet repositories are required")
	}
	if deps.Tx == nil {
		panic("transactor is required")
	}
	if deps.Cache == nil {
		panic("cache is required")
	}

	// Metrics is optional, create no-op collector if nil
	if deps.Metrics == nil {
		deps.Metrics = &NoopMetricsCollector{}
	}
	if deps.Audit == nil {
		deps.Audit = audit.Noop{}
	}
	if currency == "" {
		currency = "INR"
	}

	return &service{
		users:       deps.Users,
		wallets:     deps.Wallets,
		withdrawals: deps.Withdrawals,
		tx:          deps.Tx,
		cache:       deps.Cache,
		notifier:    deps.Notifier,
		audit:       deps.Audit,
		metrics:     deps.Metrics,
		withdrawMin: cfg.WithdrawMin,
		dailyLimit:  cfg.WithdrawDailyLimit,
		currency:    currency,
		now:         time.Now,
	}
}

func (s *service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	wallet, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, _, err := s.wallets.ListTransactions(ctx, userID, RecentTransactions, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &Summary{Wallet: wallet, Transactions: txs}, nil
}

func (s *service) Transactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, int64, error) {
	return s.wallets.ListTransactions(ctx, userID, limit, offset)
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, req CreditRequest) (*models.Wallet, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	start := s.now()

	entry := &models.Transaction{
		Category:    req.Category,
		Reference:   req.Reference,
		Description: req.Description,
	}
	wallet, err := s.wallets.WithTx(tx).Credit(ctx, req.UserID, req.Amount, entry)
	s.metrics.RecordOperationDuration("credit", time.Since(start))
	if err != nil {
		s.metrics.RecordOperationResult("credit", "error")
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	s.metrics.RecordOperationResult("credit", "success")
	s.metrics.RecordTransaction(models.TransactionCredit, req.Category, req.Amount)
	return wallet, nil
}
