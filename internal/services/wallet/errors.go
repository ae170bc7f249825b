package wallet

import "eventflex/internal/apperr"

// Service errors
var (
	ErrWalletNotFound       = apperr.NotFound("wallet not found")
	ErrInvalidAmount        = apperr.BadRequest("amount must be greater than zero")
	ErrBelowMinimum         = apperr.BadRequest("amount is below the minimum withdrawal")
	ErrInsufficientBalance  = apperr.Unprocessable("insufficient balance")
	ErrDailyLimitExceeded   = apperr.Unprocessable("daily withdrawal limit exceeded")
	ErrWalletLocked         = apperr.Forbidden("wallet is frozen")
	ErrKYCRequired          = apperr.Forbidden("KYC must be approved before withdrawing")
	ErrPayoutAccountMissing = apperr.Unprocessable("add a bank account to your profile before withdrawing")
	ErrWithdrawalNotFound   = apperr.NotFound("withdrawal not found")
	ErrWithdrawalNotPending = apperr.Conflict("withdrawal has already been settled")
	ErrReasonRequired       = apperr.BadRequest("reason is required")
)
