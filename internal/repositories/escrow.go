package repositories

import (
	"context"
	"time"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EscrowRepository interface {
	Create(ctx context.Context, escrow *models.Escrow) error
	GetByID(ctx context.Context, id uint) (*models.Escrow, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error)
	Update(ctx context.Context, escrow *models.Escrow) error
	// GetActiveByEvent returns the escrow that is awaiting payment or funded for an event.
	GetActiveByEvent(ctx context.Context, eventID uint) (*models.Escrow, error)
	List(ctx context.Context, hostID uint, status string, limit, offset int) ([]models.Escrow, int64, error)
	// ListReleasable returns funded, undisputed escrows whose event completed before
	// cutoff and has no open dispute.
	ListReleasable(ctx context.Context, cutoff time.Time) ([]models.Escrow, error)
	WithTx(tx *gorm.DB) EscrowRepository
}

type escrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) WithTx(tx *gorm.DB) EscrowRepository {
	return &escrowRepository{db: tx}
}

func (r *escrowRepository) Create(ctx context.Context, escrow *models.Escrow) error {
	return translate(r.db.WithContext(ctx).Create(escrow).Error)
}

func (r *escrowRepository) GetByID(ctx context.Context, id uint) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.WithContext(ctx).First(&escrow, id).Error; err != nil {
		return nil, translate(err)
	}
	return &escrow, nil
}

func (r *escrowRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error) {
	var escrow models.Escrow
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&escrow, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &escrow, nil
}

func (r *escrowRepository) Update(ctx context.Context, escrow *models.Escrow) error {
	return translate(r.db.WithContext(ctx).Save(escrow).Error)
}

func (r *escrowRepository) GetActiveByEvent(ctx context.Context, eventID uint) (*models.Escrow, error) {
	var escrow models.Escrow
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status IN ?", eventID, []string{models.EscrowPendingPayment, models.EscrowFunded}).
		Order("id DESC").First(&escrow).Error
	if err != nil {
		return nil, translate(err)
	}
	return &escrow, nil
}

func (r *escrowRepository) List(ctx context.Context, hostID uint, status string, limit, offset int) ([]models.Escrow, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Escrow{})
		if hostID != 0 {
			q = q.Where("host_id = ?", hostID)
		}
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var escrows []models.Escrow
	err := scope().Order("created_at DESC").Limit(limit).Offset(offset).Find(&escrows).Error
	return escrows, total, err
}

func (r *escrowRepository) ListReleasable(ctx context.Context, cutoff time.Time) ([]models.Escrow, error) {
	var escrows []models.Escrow
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = escrows.event_id").
		Where("escrows.status = ? AND escrows.disputed = ? AND events.status = ? AND events.completed_at <= ?",
			models.EscrowFunded, false, models.EventStatusCompleted, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM disputes WHERE disputes.event_id = escrows.event_id AND disputes.status = ? AND disputes.deleted_at IS NULL)",
			models.DisputeOpen).
		Order("escrows.id ASC").
		Find(&escrows).Error
	return escrows, err
}
