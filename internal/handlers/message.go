package handlers

import (
	"eventflex/internal/services/message"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService message.Service
}

func NewMessageHandler(s message.Service) *MessageHandler {
	return &MessageHandler{messageService: s}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req message.SendRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	msg, err := h.messageService.Send(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Message sent", msg)
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	convs, err := h.messageService.Conversations(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Conversations", convs)
}

func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	partnerID, ok := pathID(c, "userId")
	if !ok {
		return invalidID(c)
	}
	p := pagination.ParseFromRequest(c)

	msgs, total, err := h.messageService.Conversation(c.UserContext(), claims.UserID, partnerID, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, msgs))
}
