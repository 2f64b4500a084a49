package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID          uuid.UUID       `json:"id"           db:"id"`
	UserID      uuid.UUID       `json:"user_id"      db:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      OrderStatus     `json:"status"       db:"status"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	Items       []OrderItem     `json:"items"        db:"-"`
}

// OrderItem keeps the unit price paid, not the live product price.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"         db:"id"`
	OrderID   uuid.UUID       `json:"order_id"   db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity"   db:"quantity"`
	Price     decimal.Decimal `json:"price"      db:"price"`
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, order *Order) (*Order, error)
	InsertOrderItems(ctx context.Context, orderID uuid.UUID, items []OrderItem) ([]OrderItem, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error)
	ListOrders(ctx context.Context, params ListParams) ([]Order, int, error)
}

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an order may move from one status to another.
// Cancelled orders are final and completed orders cannot be cancelled.
func CanTransition(from, to OrderStatus) bool {
	if !IsValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusCancelled:
		return false
	case StatusCompleted:
		return to != StatusCancelled
	default:
		return true
	}
}
