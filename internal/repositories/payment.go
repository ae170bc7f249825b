package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	ListByHost(ctx context.Context, hostID uint, limit, offset int) ([]models.Payment, int64, error)
	WithTx(tx *gorm.DB) PaymentRepository
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	return &paymentRepository{db: tx}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Save(payment).Error)
}

func (r *paymentRepository) ListByHost(ctx context.Context, hostID uint, limit, offset int) ([]models.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("host_id = ?", hostID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("host_id = ?", hostID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error
	return payments, total, err
}
