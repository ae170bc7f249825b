package handlers

import (
	"context"

	"eventflex/internal/models"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationReader is the read side of the notification service.
type NotificationReader interface {
	List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type NotificationHandler struct {
	notifications NotificationReader
}

func NewNotificationHandler(n NotificationReader) *NotificationHandler {
	return &NotificationHandler{notifications: n}
}

// List returns notifications, unread first. ?unread=true hides read ones.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	list, total, err := h.notifications.List(c.UserContext(), claims.UserID, c.QueryBool("unread"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, list))
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.notifications.MarkRead(c.UserContext(), claims.UserID, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	n, err := h.notifications.MarkAllRead(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications marked as read", fiber.Map{"updated": n})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	n, err := h.notifications.UnreadCount(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Unread notifications", fiber.Map{"count": n})
}
