// Package audit records admin actions to the MongoDB audit trail.
package audit

import (
	"context"
	"time"

	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories/mongostore"

	"github.com/sirupsen/logrus"
)

// Actions
const (
	ActionUserBlock         = "user.block"
	ActionUserUnblock       = "user.unblock"
	ActionKYCApprove        = "kyc.approve"
	ActionKYCReject         = "kyc.reject"
	ActionWithdrawalProcess = "withdrawal.process"
	ActionWithdrawalReject  = "withdrawal.reject"
	ActionDisputeResolve    = "dispute.resolve"
	ActionDisputeReject     = "dispute.reject"
	ActionEscrowAutoRelease = "escrow.auto_release"
	ActionEscrowRelease     = "escrow.release"
	ActionEscrowRefund      = "escrow.refund"
	ActionAdminSeeded       = "admin.seed"
)

// Recorder appends to the audit trail. Like notifications, failures are
// logged rather than surfaced.
type Recorder interface {
	Record(ctx context.Context, actorID uint, action, entity string, entityID uint, details map[string]interface{})
}

type Service struct {
	repo mongostore.AuditRepository
	now  func() time.Time
}

func NewService(repo mongostore.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Record(ctx context.Context, actorID uint, action, entity string, entityID uint, details map[string]interface{}) {
	entry := &models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		IP:       ipFrom(ctx),
		At:       s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"actor_id":  actorID,
			"action":    action,
			"entity_id": entityID,
		}).Error("failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, f, limit, offset)
}

type ipKey struct{}

// WithIP attaches the caller's address so Record can store it.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func ipFrom(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}

// Noop discards entries; used where no audit store is configured.
type Noop struct{}

func (Noop) Record(context.Context, uint, string, string, uint, map[string]interface{}) {}
