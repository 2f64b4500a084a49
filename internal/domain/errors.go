package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPartialCheckout    = errors.New("checkout partially applied")
	ErrPartialProductEdit = errors.New("product edit partially applied")

	ErrAdminKeyMissing         = errors.New("service role key is not configured")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Invalid returns a validation error carrying a caller-facing message.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound for the given entity and key.
func NotFound(entity string, key interface{}) error {
	return fmt.Errorf("%s %v %w", entity, key, ErrNotFound)
}

// Conflict returns an ErrConflict for the given entity description.
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s %w", fmt.Sprintf(format, args...), ErrConflict)
}
