package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KYCRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.KYCVerification, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error)
	Create(ctx context.Context, kyc *models.KYCVerification) error
	Update(ctx context.Context, kyc *models.KYCVerification) error
	List(ctx context.Context, status string, limit, offset int) ([]models.KYCVerification, int64, error)
	WithTx(tx *gorm.DB) KYCRepository
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) WithTx(tx *gorm.DB) KYCRepository {
	return &kycRepository{db: tx}
}

func (r *kycRepository) GetByUserID(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	var kyc models.KYCVerification
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&kyc).Error; err != nil {
		return nil, translate(err)
	}
	return &kyc, nil
}

func (r *kycRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.KYCVerification, error) {
	var kyc models.KYCVerification
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&kyc, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &kyc, nil
}

func (r *kycRepository) Create(ctx context.Context, kyc *models.KYCVerification) error {
	return translate(r.db.WithContext(ctx).Create(kyc).Error)
}

func (r *kycRepository) Update(ctx context.Context, kyc *models.KYCVerification) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(kyc).Error)
}

func (r *kycRepository) List(ctx context.Context, status string, limit, offset int) ([]models.KYCVerification, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.KYCVerification{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.KYCVerification
	err := scope().Preload("User").Order("submitted_at ASC NULLS LAST, id ASC").
		Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
