package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one persisted cart row, unique per (user, product).
type CartItem struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	UserID    uuid.UUID `json:"user_id"    db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity"   db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartLine is a cart row joined with the product it refers to.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartRepository interface {
	ListCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	// AddCartItem inserts a row, or increments the quantity of the existing
	// (user, product) row, and returns the resulting line.
	AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartLine, error)
	UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}
