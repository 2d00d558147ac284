package wallet

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountBelowMinimum  = errors.New("amount is below the minimum top-up")
	ErrInvalidStatus       = errors.New("status must be SUCCESS or FAILED")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("wallet transaction not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrRefundExceedsHold   = errors.New("refund exceeds the order's settled hold")
	ErrHoldConflict        = errors.New("order already has a different pending hold")
	ErrOrderRequired       = errors.New("order id is required")
)
