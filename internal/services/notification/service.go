package notification

import (
	"context"
	"errors"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"

	"github.com/sirupsen/logrus"
)

var ErrNotificationNotFound = apperr.NotFound("notification not found")

// Notifier is the write side other services depend on. Delivery is best
// effort: a failed insert is logged and never fails the caller's operation.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, title, body string, data models.JSON)
}

type Service struct {
	repo repositories.NotificationRepository
}

func NewService(repo repositories.NotificationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Notify(ctx context.Context, userID uint, kind, title, body string, data models.JSON) {
	n := &models.Notification{
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    kind,
		}).Warn("failed to store notification")
	}
}

func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	err := s.repo.MarkRead(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
