package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error)
	Update(ctx context.Context, w *models.Withdrawal) error
	List(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error)
	WithTx(tx *gorm.DB) WithdrawalRepository
}

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: tx}
}

func (r *withdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r *withdrawalRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *withdrawalRepository) Update(ctx context.Context, w *models.Withdrawal) error {
	return translate(r.db.WithContext(ctx).Save(w).Error)
}

func (r *withdrawalRepository) List(ctx context.Context, userID uint, status string, limit, offset int) ([]models.Withdrawal, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Withdrawal{})
		if userID != 0 {
			q = q.Where("user_id = ?", userID)
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
	var ws []models.Withdrawal
	err := scope().Order("created_at DESC").Limit(limit).Offset(offset).Find(&ws).Error
	return ws, total, err
}
