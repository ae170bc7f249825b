package handlers

import (
	"eventflex/internal/services/wallet"
	"eventflex/internal/utils/pagination"
	"eventflex/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallet returns the balance with the most recent ledger entries.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	summary, err := h.walletService.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet", summary)
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	txs, total, err := h.walletService.Transactions(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	var input struct {
		Amount int64 `json:"amount"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	w, err := h.walletService.Withdraw(c.UserContext(), claims.UserID, input.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Withdrawal requested", w)
}

func (h *WalletHandler) ListWithdrawals(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	p := pagination.ParseFromRequest(c)

	list, total, err := h.walletService.ListWithdrawals(c.UserContext(), claims.UserID, c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, list))
}

// Admin endpoints

func (h *WalletHandler) AdminListWithdrawals(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	list, total, err := h.walletService.ListWithdrawals(c.UserContext(), 0, c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, list))
}

func (h *WalletHandler) ProcessWithdrawal(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var input struct {
		PayoutReference string `json:"payout_reference"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	w, err := h.walletService.ProcessWithdrawal(c.UserContext(), claims.UserID, id, input.PayoutReference)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal processed", w)
}

func (h *WalletHandler) RejectWithdrawal(c *fiber.Ctx) error {
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

	w, err := h.walletService.RejectWithdrawal(c.UserContext(), claims.UserID, id, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal rejected", w)
}
