package notification

import (
	"context"
	"errors"
	"testing"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotify_StoresNotification(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == 4 && n.Type == models.NotifyKYC && n.Title == "KYC approved" && !n.CreatedAt.IsZero()
	})).Return(nil)

	NewService(repo).Notify(context.Background(), 4, models.NotifyKYC, "KYC approved", "", nil)
	repo.AssertExpectations(t)
}

func TestNotify_SwallowsErrors(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		NewService(repo).Notify(context.Background(), 4, models.NotifyPayout, "x", "y", nil)
	})
}

func TestMarkRead(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	repo.On("MarkRead", mock.Anything, uint(1), uint(10)).Return(nil)
	repo.On("MarkRead", mock.Anything, uint(1), uint(11)).Return(repositories.ErrNotFound)
	s := NewService(repo)

	assert.NoError(t, s.MarkRead(context.Background(), 1, 10))
	assert.ErrorIs(t, s.MarkRead(context.Background(), 1, 11), ErrNotificationNotFound)
}
