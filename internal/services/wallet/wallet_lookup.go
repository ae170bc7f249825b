package wallet

import (
	"context"
	"errors"
	"fmt"

	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
)

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if wallet, ok := s.cachedWallet(ctx, userID); ok {
		return wallet, nil
	}

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	s.storeWallet(ctx, wallet)
	return wallet, nil
}

// EnsureWallet returns the user's wallet, creating it for accounts that
// predate wallet provisioning at registration.
func (s *service) EnsureWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	wallet = &models.Wallet{
		UserID:   userID,
		Currency: s.currency,
		Status:   models.WalletStatusActive,
	}
	if err := s.wallets.Create(ctx, wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.wallets.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	logger.Log.WithField("user_id", userID).Info("created missing wallet")
	return wallet, nil
}
