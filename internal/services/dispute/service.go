// Package dispute lets event participants contest an escrow and lets admins
// settle the contest.
package dispute

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/escrow"
	"eventflex/internal/services/notification"
	"eventflex/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = apperr.NotFound("event not found")
	ErrNotParticipant     = apperr.Forbidden("only the host, organizer or an accepted gig can dispute this event")
	ErrAlreadyOpen        = apperr.Conflict("you already have an open dispute for this event")
	ErrDisputeNotFound    = apperr.NotFound("dispute not found")
	ErrDisputeClosed      = apperr.Unprocessable("dispute is already closed")
	ErrEventNotDisputable = apperr.Unprocessable("draft events cannot be disputed")
)

type FileRequest struct {
	EventID uint   `json:"event_id" validate:"required"`
	Reason  string `json:"reason" validate:"required,min=10,max=1000"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution" validate:"required,max=1000"`
	RefundHost bool   `json:"refund_host"`
}

type Service interface {
	File(ctx context.Context, userID uint, role string, req FileRequest) (*models.Dispute, error)
	// List returns disputes raised by userID, or all disputes when userID is 0.
	List(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Dispute, int64, error)
	Resolve(ctx context.Context, adminID, id uint, req ResolveRequest) (*models.Dispute, error)
	Reject(ctx context.Context, adminID, id uint, resolution string) (*models.Dispute, error)
}

type Dependencies struct {
	Disputes repositories.DisputeRepository
	Events   repositories.EventRepository
	Pools    repositories.PoolRepository
	Escrows  repositories.EscrowRepository
	Tx       repositories.Transactor
	Escrow   escrow.Service
	Notifier notification.Notifier
	Audit    audit.Recorder
}

type service struct {
	disputes repositories.DisputeRepository
	events   repositories.EventRepository
	pools    repositories.PoolRepository
	escrows  repositories.EscrowRepository
	tx       repositories.Transactor
	escrow   escrow.Service
	notifier notification.Notifier
	audit    audit.Recorder
	now      func() time.Time
}

func NewService(deps Dependencies) Service {
	if deps.Audit == nil {
		deps.Audit = audit.Noop{}
	}
	return &service{
		disputes: deps.Disputes,
		events:   deps.Events,
		pools:    deps.Pools,
		escrows:  deps.Escrows,
		tx:       deps.Tx,
		escrow:   deps.Escrow,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		now:      time.Now,
	}
}

func (s *service) File(ctx context.Context, userID uint, role string, req FileRequest) (*models.Dispute, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status == models.EventStatusDraft {
		return nil, ErrEventNotDisputable
	}
	if err := s.checkParticipant(ctx, event, userID, role); err != nil {
		return nil, err
	}

	open, err := s.disputes.ExistsOpen(ctx, event.ID, userID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyOpen
	}

	d := &models.Dispute{
		EventID:      event.ID,
		RaisedBy:     userID,
		RaisedByRole: role,
		Reason:       req.Reason,
		Status:       models.DisputeOpen,
	}
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		active, err := s.escrows.WithTx(tx).GetActiveByEvent(ctx, event.ID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
		case err != nil:
			return err
		default:
			locked, err := s.escrows.WithTx(tx).GetByIDForUpdate(ctx, active.ID)
			if err != nil {
				return err
			}
			d.EscrowID = &locked.ID
			if !locked.Disputed {
				locked.Disputed = true
				if err := s.escrows.WithTx(tx).Update(ctx, locked); err != nil {
					return err
				}
			}
		}
		return s.disputes.WithTx(tx).Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"dispute_id": d.ID,
		"event_id":   event.ID,
		"raised_by":  userID,
	}).Info("dispute filed")
	if event.HostID != userID {
		s.notify(ctx, event.HostID, "Dispute filed", "A dispute was filed for "+event.Title, d)
	}
	return d, nil
}

func (s *service) checkParticipant(ctx context.Context, event *models.Event, userID uint, role string) error {
	switch role {
	case models.RoleHost:
		if event.HostID == userID {
			return nil
		}
	case models.RoleOrganizer:
		if event.IsOrganizer(userID) {
			return nil
		}
	case models.RoleGig:
		ok, err := s.pools.HasAcceptedGig(ctx, event.ID, userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrNotParticipant
}

func (s *service) List(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Dispute, int64, error) {
	return s.disputes.List(ctx, userID, status, limit, offset)
}

func (s *service) Resolve(ctx context.Context, adminID, id uint, req ResolveRequest) (*models.Dispute, error) {
	req.Resolution = strings.TrimSpace(req.Resolution)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var refunded *models.Escrow
	d, err := s.close(ctx, adminID, id, models.DisputeResolved, req.Resolution, func(tx *gorm.DB, d *models.Dispute, e *models.Escrow) (bool, error) {
		if !req.RefundHost || e == nil || e.Status != models.EscrowFunded {
			return false, nil
		}
		d.RefundHost = true
		r, err := s.escrow.RefundTx(ctx, tx, e.ID, "dispute resolved in host's favour")
		if err != nil {
			return false, err
		}
		refunded = r
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.escrow.AfterRefund(ctx, adminID, refunded, "dispute resolved in host's favour")
	s.notify(ctx, d.RaisedBy, "Dispute resolved", d.Resolution, d)
	s.audit.Record(ctx, adminID, audit.ActionDisputeResolve, "dispute", d.ID, map[string]interface{}{
		"refund_host": d.RefundHost,
		"resolution":  d.Resolution,
	})
	return d, nil
}

func (s *service) Reject(ctx context.Context, adminID, id uint, resolution string) (*models.Dispute, error) {
	req := ResolveRequest{Resolution: strings.TrimSpace(resolution)}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	d, err := s.close(ctx, adminID, id, models.DisputeRejected, req.Resolution, nil)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, d.RaisedBy, "Dispute rejected", d.Resolution, d)
	s.audit.Record(ctx, adminID, audit.ActionDisputeReject, "dispute", d.ID, map[string]interface{}{
		"resolution": d.Resolution,
	})
	return d, nil
}

// settleFunc runs inside close's transaction with the event's locked escrow (nil
// when the event has none) and reports whether it already cleared the disputed flag.
type settleFunc func(tx *gorm.DB, d *models.Dispute, e *models.Escrow) (bool, error)

func (s *service) close(ctx context.Context, adminID, id uint, status, resolution string, settle settleFunc) (*models.Dispute, error) {
	var out *models.Dispute
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		d, err := s.disputes.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrDisputeNotFound
			}
			return err
		}
		if d.Status != models.DisputeOpen {
			return ErrDisputeClosed
		}

		now := s.now()
		d.Status = status
		d.Resolution = resolution
		d.ResolvedBy = &adminID
		d.ResolvedAt = &now

		e, err := s.currentEscrow(ctx, tx, d.EventID)
		if err != nil {
			return err
		}
		if e != nil {
			d.EscrowID = &e.ID
		}

		cleared := false
		if settle != nil {
			if cleared, err = settle(tx, d, e); err != nil {
				return err
			}
		}
		if err := s.disputes.WithTx(tx).Update(ctx, d); err != nil {
			return err
		}
		if e != nil && !cleared && e.Disputed {
			if err := s.clearIfLast(ctx, tx, e); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"dispute_id": out.ID,
		"status":     status,
		"admin_id":   adminID,
	}).Info("dispute closed")
	return out, nil
}

// currentEscrow locks the event's pending or funded escrow. A dispute filed
// before the deposit, or against an escrow later replaced, settles against it.
func (s *service) currentEscrow(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Escrow, error) {
	active, err := s.escrows.WithTx(tx).GetActiveByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.escrows.WithTx(tx).GetByIDForUpdate(ctx, active.ID)
}

// clearIfLast lifts the release block once no open dispute remains on the event.
func (s *service) clearIfLast(ctx context.Context, tx *gorm.DB, e *models.Escrow) error {
	n, err := s.disputes.WithTx(tx).CountOpenByEvent(ctx, e.EventID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	e.Disputed = false
	return s.escrows.WithTx(tx).Update(ctx, e)
}

func (s *service) notify(ctx context.Context, userID uint, title, body string, d *models.Dispute) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, models.NotifyDispute, title, body,
			models.JSON{"dispute_id": d.ID, "event_id": d.EventID})
	}
}
