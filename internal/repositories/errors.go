package repositories

import "errors"

// Storage-layer sentinels. Services translate these into the caller-facing
// taxonomy in internal/apperrors.
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrSchemeNotFound       = errors.New("scheme not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrDuplicateReference   = errors.New("duplicate transaction reference")
	ErrDuplicateUser        = errors.New("user already exists")
)
