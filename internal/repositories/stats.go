package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
)

// StatsRepository runs the aggregate queries behind the dashboards.
type StatsRepository interface {
	EventsByStatus(ctx context.Context, hostID uint) (map[string]int64, error)
	EscrowTotals(ctx context.Context, hostID uint) (map[string]int64, error)
	InvitationsByStatus(ctx context.Context, gigID uint) (map[string]int64, error)
	CountPools(ctx context.Context, organizerID uint) (int64, error)
	CountAcceptedForOrganizer(ctx context.Context, organizerID uint) (int64, error)
	Earnings(ctx context.Context, userID uint) (int64, error)
	UsersByRole(ctx context.Context) (map[string]int64, error)
	Count(ctx context.Context, model interface{}, status string) (int64, error)
	CountOpenDisputesForHost(ctx context.Context, hostID uint) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func toMap(rows []models.StatusCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out
}

func (r *statsRepository) EventsByStatus(ctx context.Context, hostID uint) (map[string]int64, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Select("status, COUNT(*) AS count").
		Where("host_id = ?", hostID).
		Group("status").Scan(&rows).Error
	return toMap(rows), err
}

// EscrowTotals sums escrow amounts per status for a host.
func (r *statsRepository) EscrowTotals(ctx context.Context, hostID uint) (map[string]int64, error) {
	var rows []models.StatusCount
	q := r.db.WithContext(ctx).Model(&models.Escrow{}).
		Select("status, COALESCE(SUM(amount), 0) AS count")
	if hostID != 0 {
		q = q.Where("host_id = ?", hostID)
	}
	err := q.Group("status").Scan(&rows).Error
	return toMap(rows), err
}

func (r *statsRepository) InvitationsByStatus(ctx context.Context, gigID uint) (map[string]int64, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.PoolInvitation{}).
		Select("status, COUNT(*) AS count").
		Where("gig_id = ?", gigID).
		Group("status").Scan(&rows).Error
	return toMap(rows), err
}

func (r *statsRepository) CountPools(ctx context.Context, organizerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Pool{}).Where("organizer_id = ?", organizerID).Count(&n).Error
	return n, err
}

func (r *statsRepository) CountAcceptedForOrganizer(ctx context.Context, organizerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PoolInvitation{}).
		Joins("JOIN pools ON pools.id = pool_invitations.pool_id").
		Where("pools.organizer_id = ? AND pool_invitations.status = ?", organizerID, models.InvitationAccepted).
		Count(&n).Error
	return n, err
}

// Earnings is the lifetime total of escrow releases credited to userID.
func (r *statsRepository) Earnings(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category = ?", userID, models.CategoryEscrowRelease).
		Scan(&total).Error
	return total, err
}

func (r *statsRepository) UsersByRole(ctx context.Context) (map[string]int64, error) {
	var rows []models.StatusCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS status, COUNT(*) AS count").
		Group("role").Scan(&rows).Error
	return toMap(rows), err
}

// Count counts rows of model with the given status.
func (r *statsRepository) Count(ctx context.Context, model interface{}, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *statsRepository) CountOpenDisputesForHost(ctx context.Context, hostID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Joins("JOIN events ON events.id = disputes.event_id").
		Where("events.host_id = ? AND disputes.status = ?", hostID, models.DisputeOpen).
		Count(&n).Error
	return n, err
}
