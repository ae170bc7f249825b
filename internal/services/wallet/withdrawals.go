package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/audit"
	"eventflex/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Withdraw debits the wallet immediately and queues a payout for an admin to settle.
func (s *service) Withdraw(ctx context.Context, userID uint, amount int64) (*models.Withdrawal, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration("withdraw", time.Since(start)) }()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < s.withdrawMin {
		return nil, ErrBelowMinimum
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.KYCStatus != models.KYCApproved {
		return nil, ErrKYCRequired
	}
	if !user.HasPayoutAccount() {
		return nil, ErrPayoutAccountMissing
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet.Status != models.WalletStatusActive {
		return nil, ErrWalletLocked
	}

	withdrawal := &models.Withdrawal{
		UserID:        userID,
		Amount:        amount,
		Status:        models.WithdrawalRequested,
		Reference:     utils.NewReference("wd"),
		AccountName:   user.BankAccountName,
		AccountMasked: user.MaskedAccountNumber(),
		IFSC:          user.BankIFSC,
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		// Concurrent requests from the same user queue on the wallet row,
		// so each one sees the others' debits when it sums the day.
		locked, err := s.wallets.WithTx(tx).GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if locked.Status != models.WalletStatusActive {
			return ErrWalletLocked
		}
		if err := s.checkDailyLimit(ctx, tx, userID, amount); err != nil {
			return err
		}

		entry := &models.Transaction{
			Category:    models.CategoryWithdrawal,
			Reference:   withdrawal.Reference,
			Description: "Withdrawal to " + withdrawal.AccountMasked,
		}
		if _, err := s.wallets.WithTx(tx).Debit(ctx, userID, amount, entry); err != nil {
			return err
		}
		return s.withdrawals.WithTx(tx).Create(ctx, withdrawal)
	})
	if err != nil {
		s.metrics.RecordOperationResult("withdraw", "error")
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			return nil, ErrInsufficientBalance
		case errors.Is(err, ErrWalletLocked), errors.Is(err, ErrDailyLimitExceeded):
			return nil, err
		}
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	s.Invalidate(ctx, userID)
	s.metrics.RecordOperationResult("withdraw", "success")
	s.metrics.RecordTransaction(models.TransactionDebit, models.CategoryWithdrawal, amount)
	logger.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount,
		"reference": withdrawal.Reference,
	}).Info("withdrawal requested")
	return withdrawal, nil
}

// checkDailyLimit counts today's withdrawals (UTC) net of reversals of those same
// withdrawals. A reversal today of an earlier day's withdrawal frees no room.
func (s *service) checkDailyLimit(ctx context.Context, tx *gorm.DB, userID uint, amount int64) error {
	if s.dailyLimit <= 0 {
		return nil
	}
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	wallets := s.wallets.WithTx(tx)
	withdrawn, err := wallets.SumByCategory(ctx, userID, models.CategoryWithdrawal, startOfDay)
	if err != nil {
		return fmt.Errorf("failed to check daily limit: %w", err)
	}
	reversed, err := wallets.SumWithdrawalReversals(ctx, userID, startOfDay)
	if err != nil {
		return fmt.Errorf("failed to check daily limit: %w", err)
	}

	if withdrawn-reversed+amount > s.dailyLimit {
		return ErrDailyLimitExceeded
	}
	return nil
}

func (s *service) ListWithdrawals(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error) {
	return s.withdrawals.List(ctx, userID, status, limit, offset)
}

// ProcessWithdrawal records that the payout was sent outside the platform.
func (s *service) ProcessWithdrawal(ctx context.Context, adminID, id uint, payoutReference string) (*models.Withdrawal, error) {
	var withdrawal *models.Withdrawal
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		w, err := s.lockPending(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		w.Status = models.WithdrawalProcessed
		w.PayoutReference = strings.TrimSpace(payoutReference)
		if w.PayoutReference == "" {
			w.PayoutReference = utils.NewReference("payout")
		}
		w.ProcessedAt = &now
		w.ProcessedBy = &adminID
		withdrawal = w
		return s.withdrawals.WithTx(tx).Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, adminID, audit.ActionWithdrawalProcess, "withdrawal", withdrawal.ID, map[string]interface{}{
		"amount":           withdrawal.Amount,
		"payout_reference": withdrawal.PayoutReference,
	})
	s.notify(ctx, withdrawal.UserID, "Withdrawal processed",
		fmt.Sprintf("Your withdrawal %s has been paid out.", withdrawal.Reference), withdrawal)
	return withdrawal, nil
}

// RejectWithdrawal settles a withdrawal as rejected and returns the money to the wallet.
func (s *service) RejectWithdrawal(ctx context.Context, adminID, id uint, reason string) (*models.Withdrawal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var withdrawal *models.Withdrawal
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		w, err := s.lockPending(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		w.Status = models.WithdrawalRejected
		w.RejectReason = reason
		w.ProcessedAt = &now
		w.ProcessedBy = &adminID
		if err := s.withdrawals.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}

		_, err = s.CreditTx(ctx, tx, CreditRequest{
			UserID:      w.UserID,
			Amount:      w.Amount,
			Category:    models.CategoryWithdrawalReversal,
			Reference:   w.Reference,
			Description: "Withdrawal rejected: " + reason,
		})
		withdrawal = w
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, withdrawal.UserID)
	s.audit.Record(ctx, adminID, audit.ActionWithdrawalReject, "withdrawal", withdrawal.ID, map[string]interface{}{
		"amount": withdrawal.Amount,
		"reason": reason,
	})
	s.notify(ctx, withdrawal.UserID, "Withdrawal rejected",
		fmt.Sprintf("Your withdrawal %s was rejected and the amount was returned to your wallet: %s", withdrawal.Reference, reason), withdrawal)
	return withdrawal, nil
}

func (s *service) lockPending(ctx context.Context, tx *gorm.DB, id uint) (*models.Withdrawal, error) {
	w, err := s.withdrawals.WithTx(tx).GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	if w.Status != models.WithdrawalRequested {
		return nil, ErrWithdrawalNotPending
	}
	return w, nil
}

func (s *service) notify(ctx context.Context, userID uint, title, body string, w *models.Withdrawal) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, models.NotifyPayout, title, body, models.JSON{
		"withdrawal_id": w.ID,
		"reference":     w.Reference,
		"status":        w.Status,
	})
}
