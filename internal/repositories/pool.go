package repositories

import (
	"context"
	"time"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PoolRepository interface {
	Create(ctx context.Context, pool *models.Pool) error
	GetByID(ctx context.Context, id uint) (*models.Pool, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Pool, error)
	GetByEventID(ctx context.Context, eventID uint) (*models.Pool, error)
	Update(ctx context.Context, pool *models.Pool) error
	ListByOrganizer(ctx context.Context, organizerID uint, limit, offset int) ([]models.Pool, int64, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Pool, int64, error)

	CreateInvitation(ctx context.Context, inv *models.PoolInvitation) error
	GetInvitation(ctx context.Context, id uint) (*models.PoolInvitation, error)
	UpdateInvitation(ctx context.Context, inv *models.PoolInvitation) error
	ListInvitationsByPool(ctx context.Context, poolID uint) ([]models.PoolInvitation, error)
	ListInvitationsByGig(ctx context.Context, gigID uint, status string) ([]models.PoolInvitation, error)
	CountAccepted(ctx context.Context, poolID uint) (int64, error)
	AttendedGigs(ctx context.Context, eventID uint) ([]models.PoolInvitation, error)
	HasAcceptedGig(ctx context.Context, eventID, gigID uint) (bool, error)
	ExpirePending(ctx context.Context, now time.Time) (int64, error)

	WithTx(tx *gorm.DB) PoolRepository
}

type poolRepository struct {
	db *gorm.DB
}

func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) WithTx(tx *gorm.DB) PoolRepository {
	return &poolRepository{db: tx}
}

func (r *poolRepository) Create(ctx context.Context, pool *models.Pool) error {
	return translate(r.db.WithContext(ctx).Create(pool).Error)
}

func (r *poolRepository) GetByID(ctx context.Context, id uint) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.WithContext(ctx).Preload("Event").First(&pool, id).Error; err != nil {
		return nil, translate(err)
	}
	return &pool, nil
}

func (r *poolRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pool, nil
}

func (r *poolRepository) GetByEventID(ctx context.Context, eventID uint) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&pool).Error; err != nil {
		return nil, translate(err)
	}
	return &pool, nil
}

func (r *poolRepository) Update(ctx context.Context, pool *models.Pool) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(pool).Error)
}

func (r *poolRepository) ListByOrganizer(ctx context.Context, organizerID uint, limit, offset int) ([]models.Pool, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Pool{}).Where("organizer_id = ?", organizerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var pools []models.Pool
	err := r.db.WithContext(ctx).Preload("Event").Where("organizer_id = ?", organizerID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&pools).Error
	return pools, total, err
}

// ListOpen returns open pools whose event is published, soonest first.
func (r *poolRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Pool, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Pool{}).
			Joins("JOIN events ON events.id = pools.event_id AND events.deleted_at IS NULL").
			Where("pools.status = ? AND events.status = ?", models.PoolStatusOpen, models.EventStatusPublished)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var pools []models.Pool
	err := scope().Preload("Event").Order("events.starts_at ASC").Limit(limit).Offset(offset).Find(&pools).Error
	return pools, total, err
}

func (r *poolRepository) CreateInvitation(ctx context.Context, inv *models.PoolInvitation) error {
	return translate(r.db.WithContext(ctx).Create(inv).Error)
}

func (r *poolRepository) GetInvitation(ctx context.Context, id uint) (*models.PoolInvitation, error) {
	var inv models.PoolInvitation
	if err := r.db.WithContext(ctx).Preload("Pool.Event").First(&inv, id).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r *poolRepository) UpdateInvitation(ctx context.Context, inv *models.PoolInvitation) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(inv).Error)
}

func (r *poolRepository) ListInvitationsByPool(ctx context.Context, poolID uint) ([]models.PoolInvitation, error) {
	var invs []models.PoolInvitation
	err := r.db.WithContext(ctx).Where("pool_id = ?", poolID).Order("id ASC").Find(&invs).Error
	return invs, err
}

func (r *poolRepository) ListInvitationsByGig(ctx context.Context, gigID uint, status string) ([]models.PoolInvitation, error) {
	q := r.db.WithContext(ctx).Preload("Pool.Event").Where("gig_id = ?", gigID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var invs []models.PoolInvitation
	err := q.Order("created_at DESC").Find(&invs).Error
	return invs, err
}

func (r *poolRepository) CountAccepted(ctx context.Context, poolID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PoolInvitation{}).
		Where("pool_id = ? AND status = ?", poolID, models.InvitationAccepted).Count(&n).Error
	return n, err
}

// AttendedGigs lists accepted invitations with confirmed attendance for an event, by invitation id.
func (r *poolRepository) AttendedGigs(ctx context.Context, eventID uint) ([]models.PoolInvitation, error) {
	var invs []models.PoolInvitation
	err := r.db.WithContext(ctx).
		Joins("JOIN pools ON pools.id = pool_invitations.pool_id").
		Where("pools.event_id = ? AND pool_invitations.status = ? AND pool_invitations.attended = ?",
			eventID, models.InvitationAccepted, true).
		Order("pool_invitations.id ASC").
		Find(&invs).Error
	return invs, err
}

func (r *poolRepository) HasAcceptedGig(ctx context.Context, eventID, gigID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PoolInvitation{}).
		Joins("JOIN pools ON pools.id = pool_invitations.pool_id").
		Where("pools.event_id = ? AND pool_invitations.gig_id = ? AND pool_invitations.status = ?",
			eventID, gigID, models.InvitationAccepted).
		Count(&n).Error
	return n > 0, err
}

// ExpirePending marks invitations that were never answered as expired once their event has started.
func (r *poolRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	started := r.db.Model(&models.Pool{}).Select("pools.id").
		Joins("JOIN events ON events.id = pools.event_id").
		Where("events.starts_at <= ?", now)

	res := r.db.WithContext(ctx).Model(&models.PoolInvitation{}).
		Where("status IN ? AND pool_id IN (?)", []string{models.InvitationInvited, models.InvitationApplied}, started).
		Updates(map[string]interface{}{"status": models.InvitationExpired, "responded_at": now})
	return res.RowsAffected, res.Error
}
