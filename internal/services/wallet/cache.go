package wallet

import (
	"context"

	"eventflex/internal/logger"
	"eventflex/internal/models"
)

// cachedWallet reads through the Redis cache. Cache errors fall back to the database.
func (s *service) cachedWallet(ctx context.Context, userID uint) (*models.Wallet, bool) {
	wallet, err := s.cache.GetWallet(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("wallet cache read failed")
		return nil, false
	}
	if wallet == nil {
		s.metrics.RecordCacheMiss()
		return nil, false
	}
	s.metrics.RecordCacheHit()
	return wallet, true
}

func (s *service) storeWallet(ctx context.Context, wallet *models.Wallet) {
	if err := s.cache.CacheWallet(ctx, wallet); err != nil {
		logger.Log.WithError(err).WithField("user_id", wallet.UserID).Warn("wallet cache write failed")
	}
}

// Invalidate drops cached wallets for every user whose balance changed.
func (s *service) Invalidate(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		if err := s.cache.InvalidateWallet(ctx, id); err != nil {
			logger.Log.WithError(err).WithField("user_id", id).Warn("wallet cache invalidation failed")
		}
	}
}
