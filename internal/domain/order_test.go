package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, true},
		{StatusPending, OrderStatus("shipped"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{
		CartItem: CartItem{ID: uuid.New(), Quantity: 3},
		Product:  Product{Price: decimal.RequireFromString("5.50")},
	}
	assert.True(t, decimal.RequireFromString("16.50").Equal(line.Subtotal()))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, errors.Is(NotFound("product", "x"), ErrNotFound))
	assert.True(t, errors.Is(Invalid("price %s", "bad"), ErrValidation))
	assert.True(t, errors.Is(Conflict("category %q", "shoes"), ErrConflict))
	assert.True(t, errors.Is(ErrCartItemNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrInvalidQuantity, ErrValidation))
	assert.EqualError(t, NotFound("order", 7), "order 7 not found")
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		price string
		ok    bool
	}{
		{"0", true},
		{"10.5", true},
		{"10.500", true},
		{"9999999999.99", true},
		{"10.005", false},
		{"-0.01", false},
		{"10000000000", false},
	}
	for _, tt := range tests {
		err := ValidatePrice(decimal.RequireFromString(tt.price))
		if tt.ok {
			assert.NoError(t, err, tt.price)
		} else {
			assert.ErrorIs(t, err, ErrValidation, tt.price)
		}
	}
}
