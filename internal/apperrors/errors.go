// Package apperrors defines the caller-facing error taxonomy. Services
// return these sentinel values so handlers can map them to HTTP statuses
// without string matching.
package apperrors

import "errors"

// DomainError carries a stable machine-readable code alongside the
// human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is lets errors.Is match two DomainErrors by code.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}

var (
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "missing or insufficient role",
	}
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "entity not found",
	}
	ErrInvalidState = &DomainError{
		Code:    "INVALID_STATE",
		Message: "invalid state transition",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrNotRefundable = &DomainError{
		Code:    "NOT_REFUNDABLE",
		Message: "transaction is not refundable",
	}
	ErrInvalidSignature = &DomainError{
		Code:    "INVALID_SIGNATURE",
		Message: "invalid webhook signature",
	}
	ErrConflict = &DomainError{
		Code:    "CONFLICT",
		Message: "operation blocked by business rule",
	}
	ErrInternal = &DomainError{
		Code:    "INTERNAL",
		Message: "internal error",
	}
)
