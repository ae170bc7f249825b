// Package message stores direct messages between users in MongoDB.
package message

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mongostore"
	"eventflex/internal/services/notification"
)

const maxBodyLength = 2000

var (
	ErrEmptyBody         = apperr.BadRequest("message body is required")
	ErrBodyTooLong       = apperr.BadRequest("message body must be at most 2000 characters")
	ErrRecipientNotFound = apperr.NotFound("recipient not found")
	ErrSelfMessage       = apperr.BadRequest("cannot message yourself")
)

type SendRequest struct {
	ToUserID uint   `json:"to_user_id" validate:"required"`
	Body     string `json:"body"`
}

type Service interface {
	Send(ctx context.Context, fromUserID uint, req SendRequest) (*models.Message, error)
	// Conversation lists messages with partnerID, newest first, and marks the
	// ones addressed to userID as read.
	Conversation(ctx context.Context, userID, partnerID uint, limit, offset int) ([]models.Message, int64, error)
	Conversations(ctx context.Context, userID uint) ([]models.Conversation, error)
}

type service struct {
	repo     mongostore.MessageRepository
	users    repositories.UserRepository
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(repo mongostore.MessageRepository, users repositories.UserRepository, notifier notification.Notifier) Service {
	return &service{repo: repo, users: users, notifier: notifier, now: time.Now}
}

func (s *service) Send(ctx context.Context, fromUserID uint, req SendRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return nil, ErrBodyTooLong
	}
	if req.ToUserID == fromUserID {
		return nil, ErrSelfMessage
	}

	recipient, err := s.users.GetByID(ctx, req.ToUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	msg := &models.Message{
		ConversationID: models.ConversationKey(fromUserID, recipient.ID),
		FromUserID:     fromUserID,
		ToUserID:       recipient.ID,
		Body:           body,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, recipient.ID, models.NotifyMessage, "New message", preview(body),
			models.JSON{"from_user_id": fromUserID, "conversation_id": msg.ConversationID})
	}
	return msg, nil
}

func preview(body string) string {
	const n = 80
	if utf8.RuneCountInString(body) <= n {
		return body
	}
	return string([]rune(body)[:n]) + "..."
}

func (s *service) Conversation(ctx context.Context, userID, partnerID uint, limit, offset int) ([]models.Message, int64, error) {
	key := models.ConversationKey(userID, partnerID)
	msgs, total, err := s.repo.ListConversation(ctx, key, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.repo.MarkRead(ctx, key, userID); err != nil {
		logger.Log.WithError(err).WithField("conversation_id", key).Warn("failed to mark messages read")
	}
	return msgs, total, nil
}

func (s *service) Conversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}
