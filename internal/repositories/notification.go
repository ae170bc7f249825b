package repositories

import (
	"context"
	"time"

	"eventflex/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	WithTx(tx *gorm.DB) NotificationRepository
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
		if unreadOnly {
			q = q.Where("read = ?", false)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Notification
	err := scope().Order("read ASC, created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// MarkRead only touches notifications owned by userID; anything else is reported as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).Count(&n).Error
	return n, err
}
