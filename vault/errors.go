package vault

import "errors"

var (
	ErrVaultPaused         = errors.New("vault is paused")
	ErrInsufficientBalance = errors.New("insufficient receipt balance")
	ErrCooldownNotElapsed  = errors.New("cooldown not elapsed")
	ErrNoPendingWithdrawal = errors.New("no pending withdrawal")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrUnauthorized        = errors.New("unauthorized")

	ErrInvalidFee         = errors.New("fee_bps above 10000")
	ErrAlreadyInitialized = errors.New("vault already initialized")
	ErrTicketExists       = errors.New("withdrawal ticket already exists")
	ErrVaultNotFound      = errors.New("vault not found")
	ErrAccountMismatch    = errors.New("holding denominated in the wrong asset")
)
