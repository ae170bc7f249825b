// Package admin implements the back-office user, event and escrow views.
// KYC, withdrawal and dispute decisions live in their own services.
package admin

import (
	"context"
	"errors"
	"strings"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/notification"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = apperr.NotFound("user not found")
	ErrCannotBlockSelf  = apperr.BadRequest("you cannot block your own account")
	ErrCannotBlockAdmin = apperr.Forbidden("admin accounts cannot be blocked")
	ErrAlreadyInStatus  = apperr.Conflict("user already has that status")
	ErrInvalidRole      = apperr.BadRequest("role must be one of: host, organizer, gig, admin")
)

type Service interface {
	ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error)
	BlockUser(ctx context.Context, adminID, userID uint, reason string) (*models.User, error)
	UnblockUser(ctx context.Context, adminID, userID uint) (*models.User, error)
	ListEvents(ctx context.Context, f repositories.EventFilter, limit, offset int) ([]models.Event, int64, error)
	ListEscrows(ctx context.Context, status string, limit, offset int) ([]models.Escrow, int64, error)
	AuditLogs(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error)
}

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error)
}

type Dependencies struct {
	Users    repositories.UserRepository
	Events   repositories.EventRepository
	Escrows  repositories.EscrowRepository
	Tx       repositories.Transactor
	Cache    cache.Cache
	Notifier notification.Notifier
	Audit    audit.Recorder
	Logs     AuditLister
}

type service struct {
	users    repositories.UserRepository
	events   repositories.EventRepository
	escrows  repositories.EscrowRepository
	tx       repositories.Transactor
	cache    cache.Cache
	notifier notification.Notifier
	audit    audit.Recorder
	logs     AuditLister
}

func NewService(deps Dependencies) Service {
	if deps.Audit == nil {
		deps.Audit = audit.Noop{}
	}
	return &service{
		users:    deps.Users,
		events:   deps.Events,
		escrows:  deps.Escrows,
		tx:       deps.Tx,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		logs:     deps.Logs,
	}
}

func (s *service) ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error) {
	if role != "" && role != models.RoleAdmin && !models.IsValidSignupRole(role) {
		return nil, 0, ErrInvalidRole
	}
	return s.users.List(ctx, role, limit, offset)
}

func (s *service) BlockUser(ctx context.Context, adminID, userID uint, reason string) (*models.User, error) {
	if adminID == userID {
		return nil, ErrCannotBlockSelf
	}
	u, err := s.setStatus(ctx, userID, models.UserStatusBlocked)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	body := "Your account has been blocked by an administrator."
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notify(ctx, u.ID, "Account blocked", body)
	s.audit.Record(ctx, adminID, audit.ActionUserBlock, "user", u.ID, map[string]interface{}{"reason": reason})
	return u, nil
}

func (s *service) UnblockUser(ctx context.Context, adminID, userID uint) (*models.User, error) {
	u, err := s.setStatus(ctx, userID, models.UserStatusActive)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, u.ID, "Account restored", "Your account has been unblocked.")
	s.audit.Record(ctx, adminID, audit.ActionUserUnblock, "user", u.ID, nil)
	return u, nil
}

// setStatus bumps the token version with the status change, so existing
// tokens stop validating on their next request.
func (s *service) setStatus(ctx context.Context, userID uint, status string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role == models.RoleAdmin && status == models.UserStatusBlocked {
		return nil, ErrCannotBlockAdmin
	}
	if u.Status == status {
		return nil, ErrAlreadyInStatus
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).SetStatus(ctx, userID, status); err != nil {
			return err
		}
		return s.users.WithTx(tx).IncrementTokenVersion(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	u.Status = status
	u.TokenVersion++

	if err := s.cache.InvalidateSession(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate session cache")
	}
	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("user status changed")
	return u, nil
}

func (s *service) ListEvents(ctx context.Context, f repositories.EventFilter, limit, offset int) ([]models.Event, int64, error) {
	return s.events.List(ctx, f, limit, offset)
}

func (s *service) ListEscrows(ctx context.Context, status string, limit, offset int) ([]models.Escrow, int64, error) {
	return s.escrows.List(ctx, 0, status, limit, offset)
}

func (s *service) AuditLogs(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	return s.logs.List(ctx, f, limit, offset)
}

func (s *service) notify(ctx context.Context, userID uint, title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, models.NotifyAccountBlocked, title, body, nil)
	}
}
