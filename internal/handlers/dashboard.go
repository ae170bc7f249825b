package handlers

import (
	"eventflex/internal/services/dashboard"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) Host(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	stats, err := h.dashboardService.Host(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Host dashboard", stats)
}

func (h *DashboardHandler) Organizer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	stats, err := h.dashboardService.Organizer(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Organizer dashboard", stats)
}

func (h *DashboardHandler) Gig(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	stats, err := h.dashboardService.Gig(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Gig dashboard", stats)
}

func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Admin(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Admin dashboard", stats)
}
