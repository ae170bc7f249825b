package handlers

import (
	"eventflex/internal/gateway"
	"eventflex/internal/services/escrow"
	"eventflex/internal/services/payment"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService payment.Service
	escrowService  escrow.Service
}

func NewPaymentHandler(paymentService payment.Service, escrowService escrow.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, escrowService: escrowService}
}

// Deposit creates a gateway order that funds an event's escrow.
func (h *PaymentHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req payment.DepositRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	result, err := h.paymentService.Deposit(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Order created", result)
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var req gateway.Verification
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	p, err := h.paymentService.Verify(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment verified", p)
}

// Webhook is unauthenticated; the gateway signature over the raw body is the credential.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get(h.paymentService.SignatureHeader())
	if signature == "" {
		return response.BadRequest(c, "missing signature")
	}
	if err := h.paymentService.HandleWebhook(c.UserContext(), c.Body(), signature); err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	payments, total, err := h.paymentService.ListPayments(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, payments))
}

func (h *PaymentHandler) ListEscrows(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	escrows, total, err := h.escrowService.List(c.UserContext(), claims.UserID, c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, escrows))
}

func (h *PaymentHandler) GetEscrow(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	e, err := h.escrowService.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Escrow", e)
}

func (h *PaymentHandler) ReleaseEscrow(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}

	result, err := h.escrowService.Release(c.UserContext(), claims.UserID, claims.UserID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Escrow released", result)
}
