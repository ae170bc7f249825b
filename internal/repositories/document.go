package repositories

import (
	"context"

	"eventflex/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	GetByUserAndType(ctx context.Context, userID uint, docType string) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	ListByUser(ctx context.Context, userID uint) ([]models.Document, error)
	WithTx(tx *gorm.DB) DocumentRepository
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) WithTx(tx *gorm.DB) DocumentRepository {
	return &documentRepository{db: tx}
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *documentRepository) GetByUserAndType(ctx context.Context, userID uint, docType string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Where("user_id = ? AND type = ?", userID, docType).First(&doc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return translate(r.db.WithContext(ctx).Create(doc).Error)
}

func (r *documentRepository) Update(ctx context.Context, doc *models.Document) error {
	return translate(r.db.WithContext(ctx).Save(doc).Error)
}

func (r *documentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("type ASC").Find(&docs).Error
	return docs, err
}
