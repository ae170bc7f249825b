package handlers

import (
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/services/admin"
	"eventflex/internal/utils"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService admin.Service
}

func NewAdminHandler(adminService admin.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetUsersPaginated lists users, optionally filtered by ?role=.
func (h *AdminHandler) GetUsersPaginated(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	users, total, err := h.adminService.ListUsers(c.UserContext(), c.Query("role"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, users))
}

func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	u, err := h.adminService.BlockUser(c.UserContext(), claims.UserID, id, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User blocked", u)
}

func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	u, err := h.adminService.UnblockUser(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User unblocked", u)
}

// GetEvents lists every event; ?status=, ?city= and ?host_id= narrow it.
func (h *AdminHandler) GetEvents(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	f := repositories.EventFilter{Status: c.Query("status"), City: c.Query("city")}
	if raw := c.Query("host_id"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			return response.BadRequest(c, "invalid host_id")
		}
		f.HostID = id
	}

	events, total, err := h.adminService.ListEvents(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, events))
}

func (h *AdminHandler) GetEscrows(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	escrows, total, err := h.adminService.ListEscrows(c.UserContext(), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, escrows))
}

// GetAuditLogs reads the audit trail; ?actor_id=, ?action= and ?entity= narrow it.
func (h *AdminHandler) GetAuditLogs(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	f := models.AuditFilter{Action: c.Query("action"), Entity: c.Query("entity")}
	if raw := c.Query("actor_id"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			return response.BadRequest(c, "invalid actor_id")
		}
		f.ActorID = id
	}

	logs, total, err := h.adminService.AuditLogs(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, logs))
}
