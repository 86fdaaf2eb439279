package usecase

import "errors"

var (
	// ErrNotFound covers absent users, orders, books and cart items.
	ErrNotFound = errors.New("not found")
	// ErrForbidden covers failed ownership and capability checks.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition means the requested edge is not in the transition
	// table from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidReference means a malformed identifier or enum value.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrPaymentDeclined is the gateway reporting failure. It is a normal
	// outcome, not a fault.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrDuplicate means a repeated idempotency key.
	ErrDuplicate = errors.New("duplicate idempotency key")
)
