package mocks

import (
	"context"
	"io"

	"eventflex/internal/models"
	"eventflex/internal/repositories/mongostore"

	"github.com/stretchr/testify/mock"
)

type AuditRepository struct{ mock.Mock }

var _ mongostore.AuditRepository = (*AuditRepository)(nil)

func (m *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, f models.AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return get[[]models.AuditLog](args, 0), get[int64](args, 1), args.Error(2)
}

type MessageRepository struct{ mock.Mock }

var _ mongostore.MessageRepository = (*MessageRepository)(nil)

func (m *MessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MessageRepository) ListConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, int64, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	return get[[]models.Message](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *MessageRepository) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	return get[[]models.Conversation](args, 0), args.Error(1)
}

func (m *MessageRepository) MarkRead(ctx context.Context, conversationID string, userID uint) (int64, error) {
	args := m.Called(ctx, conversationID, userID)
	return get[int64](args, 0), args.Error(1)
}

type FileStore struct{ mock.Mock }

var _ mongostore.FileStore = (*FileStore)(nil)

func (m *FileStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *FileStore) Open(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	return get[[]byte](args, 0), args.Error(1)
}

func (m *FileStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
