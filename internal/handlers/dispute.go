package handlers

import (
	"eventflex/internal/services/dispute"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DisputeHandler struct {
	disputeService dispute.Service
}

func NewDisputeHandler(disputeService dispute.Service) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

func (h *DisputeHandler) FileDispute(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req dispute.FileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	d, err := h.disputeService.File(c.UserContext(), claims.UserID, claims.Role, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Dispute filed successfully", d)
}

func (h *DisputeHandler) GetDisputes(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	return h.list(c, claims.UserID)
}

func (h *DisputeHandler) AdminList(c *fiber.Ctx) error {
	return h.list(c, 0)
}

func (h *DisputeHandler) list(c *fiber.Ctx, userID uint) error {
	p := pagination.ParseFromRequest(c)
	disputes, total, err := h.disputeService.List(c.UserContext(), userID, c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, disputes))
}

func (h *DisputeHandler) Resolve(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req dispute.ResolveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	d, err := h.disputeService.Resolve(c.UserContext(), claims.UserID, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dispute resolved", d)
}

func (h *DisputeHandler) Reject(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		Resolution string `json:"resolution"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	d, err := h.disputeService.Reject(c.UserContext(), claims.UserID, id, input.Resolution)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dispute rejected", d)
}
