package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DisputeRepository interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Dispute, error)
	Update(ctx context.Context, d *models.Dispute) error
	List(ctx context.Context, raisedBy uint, status string, limit, offset int) ([]models.Dispute, int64, error)
	ExistsOpen(ctx context.Context, eventID, raisedBy uint) (bool, error)
	// CountOpenByEvent counts open disputes on an event, whichever escrow they were filed against.
	CountOpenByEvent(ctx context.Context, eventID uint) (int64, error)
	WithTx(tx *gorm.DB) DisputeRepository
}

type disputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) WithTx(tx *gorm.DB) DisputeRepository {
	return &disputeRepository{db: tx}
}

func (r *disputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	return translate(r.db.WithContext(ctx).Create(d).Error)
}

func (r *disputeRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *models.Dispute) error {
	return translate(r.db.WithContext(ctx).Save(d).Error)
}

func (r *disputeRepository) List(ctx context.Context, raisedBy uint, status string, limit, offset int) ([]models.Dispute, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Dispute{})
		if raisedBy != 0 {
			q = q.Where("raised_by = ?", raisedBy)
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
	var list []models.Dispute
	err := scope().Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *disputeRepository) ExistsOpen(ctx context.Context, eventID, raisedBy uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("event_id = ? AND raised_by = ? AND status = ?", eventID, raisedBy, models.DisputeOpen).
		Count(&n).Error
	return n > 0, err
}

func (r *disputeRepository) CountOpenByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("event_id = ? AND status = ?", eventID, models.DisputeOpen).
		Count(&n).Error
	return n, err
}
