// Package escrow holds host deposits and pays them out once an event completes.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/metrics"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/notification"
	"eventflex/internal/services/wallet"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	categoryRelease = models.CategoryEscrowRelease
	categoryRefund  = models.CategoryEscrowRefund
)

var (
	ErrEscrowNotFound    = apperr.NotFound("escrow not found")
	ErrEscrowNotFunded   = apperr.Conflict("escrow is not funded")
	ErrEscrowSettled     = apperr.Conflict("escrow has already been settled")
	ErrEscrowDisputed    = apperr.Conflict("escrow has an open dispute")
	ErrEventNotCompleted = apperr.Unprocessable("event must be completed before releasing funds")
)

type Service interface {
	Get(ctx context.Context, hostID, id uint) (*models.Escrow, error)
	List(ctx context.Context, hostID uint, status string, limit, offset int) ([]models.Escrow, int64, error)
	// Release splits a funded escrow. hostID 0 skips the ownership check.
	Release(ctx context.Context, actorID, hostID, escrowID uint) (*ReleaseResult, error)
	// AutoRelease releases every escrow whose event completed before cutoff.
	AutoRelease(ctx context.Context, cutoff time.Time) (int, error)
	// RefundTx returns a funded escrow to the host, or cancels one still awaiting
	// payment. The caller must call AfterRefund once the transaction commits.
	RefundTx(ctx context.Context, tx *gorm.DB, escrowID uint, reason string) (*models.Escrow, error)
	// RefundEventTx applies RefundTx to the event's active escrow, if any.
	RefundEventTx(ctx context.Context, tx *gorm.DB, eventID uint, reason string) (*models.Escrow, error)
	AfterRefund(ctx context.Context, actorID uint, escrow *models.Escrow, reason string)
}

// ReleaseResult reports what a release paid out.
type ReleaseResult struct {
	Escrow *models.Escrow `json:"escrow"`
	Split  Split          `json:"split"`
}

type service struct {
	escrows  repositories.EscrowRepository
	events   repositories.EventRepository
	pools    repositories.PoolRepository
	disputes repositories.DisputeRepository
	tx       repositories.Transactor
	wallets  wallet.Service
	notifier notification.Notifier
	audit    audit.Recorder
	now      func() time.Time
}

type Dependencies struct {
	Escrows  repositories.EscrowRepository
	Events   repositories.EventRepository
	Pools    repositories.PoolRepository
	Disputes repositories.DisputeRepository
	Tx       repositories.Transactor
	Wallets  wallet.Service
	Notifier notification.Notifier
	Audit    audit.Recorder
}

func NewService(deps Dependencies) Service {
	if deps.Audit == nil {
		deps.Audit = audit.Noop{}
	}
	return &service{
		escrows:  deps.Escrows,
		events:   deps.Events,
		pools:    deps.Pools,
		disputes: deps.Disputes,
		tx:       deps.Tx,
		wallets:  deps.Wallets,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		now:      time.Now,
	}
}

func (s *service) Get(ctx context.Context, hostID, id uint) (*models.Escrow, error) {
	escrow, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	if hostID != 0 && escrow.HostID != hostID {
		return nil, ErrEscrowNotFound
	}
	return escrow, nil
}

func (s *service) List(ctx context.Context, hostID uint, status string, limit, offset int) ([]models.Escrow, int64, error) {
	return s.escrows.List(ctx, hostID, status, limit, offset)
}

func (s *service) lock(ctx context.Context, tx *gorm.DB, id uint) (*models.Escrow, error) {
	escrow, err := s.escrows.WithTx(tx).GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return escrow, nil
}

func (s *service) Release(ctx context.Context, actorID, hostID, escrowID uint) (*ReleaseResult, error) {
	var result *ReleaseResult
	var event *models.Event

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		escrow, err := s.lock(ctx, tx, escrowID)
		if err != nil {
			return err
		}
		if hostID != 0 && escrow.HostID != hostID {
			return ErrEscrowNotFound
		}
		switch escrow.Status {
		case models.EscrowFunded:
		case models.EscrowReleased, models.EscrowRefunded, models.EscrowCancelled:
			return ErrEscrowSettled
		default:
			return ErrEscrowNotFunded
		}

		open, err := s.disputes.WithTx(tx).CountOpenByEvent(ctx, escrow.EventID)
		if err != nil {
			return err
		}
		if escrow.Disputed || open > 0 {
			return ErrEscrowDisputed
		}

		event, err = s.events.WithTx(tx).GetByID(ctx, escrow.EventID)
		if err != nil {
			return fmt.Errorf("failed to load event: %w", err)
		}
		if event.Status != models.EventStatusCompleted {
			return ErrEventNotCompleted
		}

		attended, err := s.pools.WithTx(tx).AttendedGigs(ctx, escrow.EventID)
		if err != nil {
			return err
		}
		gigIDs := make([]uint, 0, len(attended))
		for _, inv := range attended {
			gigIDs = append(gigIDs, inv.GigID)
		}

		organizerID := event.OrganizerID
		if organizerID == nil {
			organizerID = escrow.OrganizerID
		}
		split, err := ComputeSplit(escrow.Amount, escrow.OrganizerPercentage, escrow.HostID, organizerID, gigIDs)
		if err != nil {
			return err
		}

		reference := fmt.Sprintf("escrow:%d", escrow.ID)
		for _, p := range split.Payouts {
			_, err := s.wallets.CreditTx(ctx, tx, wallet.CreditRequest{
				UserID:      p.UserID,
				Amount:      p.Amount,
				Category:    p.Category,
				Reference:   reference,
				Description: fmt.Sprintf("%s share for %s", p.Role, event.Title),
			})
			if err != nil {
				return fmt.Errorf("failed to credit user %d: %w", p.UserID, err)
			}
		}

		now := s.now()
		escrow.Status = models.EscrowReleased
		escrow.OrganizerID = organizerID
		escrow.OrganizerShare = split.OrganizerShare
		escrow.GigsShare = split.GigsShare
		escrow.ReleasedAt = &now
		if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
			return err
		}

		result = &ReleaseResult{Escrow: escrow, Split: split}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipients := make([]uint, 0, len(result.Split.Payouts))
	for _, p := range result.Split.Payouts {
		recipients = append(recipients, p.UserID)
		s.notify(ctx, p.UserID, "Payment released",
			fmt.Sprintf("%d paise from %s were credited to your wallet.", p.Amount, event.Title),
			models.JSON{"escrow_id": result.Escrow.ID, "event_id": event.ID, "amount": p.Amount})
	}
	s.wallets.Invalidate(ctx, recipients...)
	metrics.RecordEscrowTransition(models.EscrowReleased)

	action := audit.ActionEscrowRelease
	if actorID == 0 {
		action = audit.ActionEscrowAutoRelease
	}
	s.audit.Record(ctx, actorID, action, "escrow", result.Escrow.ID, map[string]interface{}{
		"amount":          result.Escrow.Amount,
		"organizer_share": result.Split.OrganizerShare,
		"gigs_share":      result.Split.GigsShare,
		"payouts":         len(result.Split.Payouts),
	})
	logger.Log.WithFields(logrus.Fields{
		"escrow_id": result.Escrow.ID,
		"event_id":  result.Escrow.EventID,
		"payouts":   len(result.Split.Payouts),
	}).Info("escrow released")
	return result, nil
}

func (s *service) AutoRelease(ctx context.Context, cutoff time.Time) (int, error) {
	due, err := s.escrows.ListReleasable(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list releasable escrows: %w", err)
	}

	released := 0
	for _, e := range due {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}
		if _, err := s.Release(ctx, 0, 0, e.ID); err != nil {
			logger.Log.WithError(err).WithField("escrow_id", e.ID).Warn("auto release skipped")
			continue
		}
		released++
	}
	return released, nil
}

func (s *service) RefundTx(ctx context.Context, tx *gorm.DB, escrowID uint, reason string) (*models.Escrow, error) {
	escrow, err := s.lock(ctx, tx, escrowID)
	if err != nil {
		return nil, err
	}
	return s.refundLocked(ctx, tx, escrow, reason)
}

func (s *service) RefundEventTx(ctx context.Context, tx *gorm.DB, eventID uint, reason string) (*models.Escrow, error) {
	active, err := s.escrows.WithTx(tx).GetActiveByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.RefundTx(ctx, tx, active.ID, reason)
}

func (s *service) refundLocked(ctx context.Context, tx *gorm.DB, escrow *models.Escrow, reason string) (*models.Escrow, error) {
	now := s.now()
	switch escrow.Status {
	case models.EscrowPendingPayment:
		escrow.Status = models.EscrowCancelled
	case models.EscrowFunded:
		_, err := s.wallets.CreditTx(ctx, tx, wallet.CreditRequest{
			UserID:      escrow.HostID,
			Amount:      escrow.Amount,
			Category:    categoryRefund,
			Reference:   fmt.Sprintf("escrow:%d", escrow.ID),
			Description: "Escrow refund: " + reason,
		})
		if err != nil {
			return nil, err
		}
		escrow.Status = models.EscrowRefunded
		escrow.RefundedAt = &now
	default:
		return nil, ErrEscrowSettled
	}
	escrow.Disputed = false

	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}
	return escrow, nil
}

func (s *service) AfterRefund(ctx context.Context, actorID uint, escrow *models.Escrow, reason string) {
	if escrow == nil {
		return
	}
	metrics.RecordEscrowTransition(escrow.Status)
	if escrow.Status != models.EscrowRefunded {
		return
	}

	s.wallets.Invalidate(ctx, escrow.HostID)
	s.notify(ctx, escrow.HostID, "Escrow refunded",
		fmt.Sprintf("%d paise were returned to your wallet: %s", escrow.Amount, reason),
		models.JSON{"escrow_id": escrow.ID, "event_id": escrow.EventID, "amount": escrow.Amount})
	s.audit.Record(ctx, actorID, audit.ActionEscrowRefund, "escrow", escrow.ID, map[string]interface{}{
		"amount": escrow.Amount,
		"reason": reason,
	})
}

func (s *service) notify(ctx context.Context, userID uint, title, body string, data models.JSON) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, models.NotifyPayment, title, body, data)
	}
}
