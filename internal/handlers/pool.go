package handlers

import (
	"eventflex/internal/services/pool"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PoolHandler struct {
	poolService pool.Service
}

func NewPoolHandler(poolService pool.Service) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// Organizer endpoints

func (h *PoolHandler) CreatePool(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req pool.CreatePoolRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	p, err := h.poolService.CreatePool(c.UserContext(), claims.UserID, eventID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Pool created", p)
}

func (h *PoolHandler) ListPools(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	pools, total, err := h.poolService.ListPools(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, pools))
}

func (h *PoolHandler) GetPool(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	detail, err := h.poolService.GetPool(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pool", detail)
}

func (h *PoolHandler) Invite(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		GigID uint `json:"gig_id"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	if input.GigID == 0 {
		return response.BadRequest(c, "gig_id is required")
	}

	inv, err := h.poolService.Invite(c.UserContext(), claims.UserID, id, input.GigID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Invitation sent", inv)
}

// DecideApplication returns the handler for /invitations/:id/accept|reject.
func (h *PoolHandler) DecideApplication(accept bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := extractUserClaims(c)
		if err != nil {
			return response.Unauthorized(c, "invalid claims")
		}
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}

		inv, err := h.poolService.DecideApplication(c.UserContext(), claims.UserID, id, accept)
		if err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, "Application "+inv.Status, inv)
	}
}

func (h *PoolHandler) MarkAttendance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		Attended *bool `json:"attended"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	if input.Attended == nil {
		return response.BadRequest(c, "attended is required")
	}

	inv, err := h.poolService.MarkAttendance(c.UserContext(), claims.UserID, id, *input.Attended)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Attendance recorded", inv)
}

// Gig endpoints

func (h *PoolHandler) ListOpen(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	pools, total, err := h.poolService.ListOpen(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, pools))
}

func (h *PoolHandler) Apply(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	inv, err := h.poolService.Apply(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Application submitted", inv)
}

func (h *PoolHandler) ListInvitations(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	invs, err := h.poolService.ListInvitations(c.UserContext(), claims.UserID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Invitations", invs)
}

// Respond returns the handler for /gigs/invitations/:id/accept|decline.
func (h *PoolHandler) Respond(accept bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := extractUserClaims(c)
		if err != nil {
			return response.Unauthorized(c, "invalid claims")
		}
		id, ok := pathID(c, "id")
		if !ok {
			return invalidID(c)
		}

		inv, err := h.poolService.Respond(c.UserContext(), claims.UserID, id, accept)
		if err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, "Invitation "+inv.Status, inv)
	}
}
