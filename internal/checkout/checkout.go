// Package checkout turns a loaded cart into a completed order.
package checkout

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// Publisher announces placed orders.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
}

type Service struct {
	orders       domain.OrderRepository
	publisher    Publisher
	enforceStock bool
	log          *logrus.Logger
}

// NewService builds the checkout flow. With enforceStock set, a cart line
// asking for more units than the product's stock at load time is refused.
func NewService(orders domain.OrderRepository, publisher Publisher, enforceStock bool, logger *logrus.Logger) *Service {
	return &Service{
		orders:       orders,
		publisher:    publisher,
		enforceStock: enforceStock,
		log:          logger,
	}
}

// Checkout writes one order with one item per cart line, using the prices
// held by the cart, then clears the cart. The writes are sequential and not
// rolled back: when a later step fails after the order row exists the error
// wraps domain.ErrPartialCheckout and names the order.
func (s *Service) Checkout(ctx context.Context, c *cart.Manager) (*domain.Order, error) {
	snap := c.Snapshot()
	lines, userID, total := snap.Lines, snap.UserID, snap.Total
	if len(lines) == 0 {
		s.log.Warnf("Checkout: Cart of user %s is empty, nothing to do", userID)
		return nil, domain.ErrEmptyCart
	}

	if s.enforceStock {
		for _, l := range lines {
			if l.Quantity > l.Product.Stock {
				s.log.Warnf("Checkout: Insufficient stock for product %s (requested %d, available %d)",
					l.ProductID, l.Quantity, l.Product.Stock)
				return nil, fmt.Errorf("%w: product %s has %d in stock, %d requested",
					domain.ErrInsufficientStock, l.Product.Name, l.Product.Stock, l.Quantity)
			}
		}
	}

	order, err := s.orders.InsertOrder(ctx, &domain.Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      domain.StatusCompleted,
	})
	if err != nil {
		s.log.Errorf("Checkout: Failed to create order for user %s: %v", userID, err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}
	inserted, err := s.orders.InsertOrderItems(ctx, order.ID, items)
	if err != nil {
		s.log.Errorf("Checkout: Order %s created but only %d of %d items were written: %v",
			order.ID, len(inserted), len(items), err)
		return nil, fmt.Errorf("%w: order %s has %d of %d items: %w",
			domain.ErrPartialCheckout, order.ID, len(inserted), len(items), err)
	}
	order.Items = inserted

	if err := c.Clear(ctx); err != nil {
		s.log.Errorf("Checkout: Order %s placed but cart of user %s was not cleared: %v", order.ID, userID, err)
		return nil, fmt.Errorf("%w: order %s placed but cart not cleared: %w", domain.ErrPartialCheckout, order.ID, err)
	}

	if err := s.publisher.PublishOrderPlaced(ctx, *order); err != nil {
		s.log.Warnf("Checkout: Failed to publish order %s: %v", order.ID, err)
	}

	s.log.Infof("Checkout: Order %s placed for user %s (%d items, total %s)", order.ID, userID, len(inserted), total)
	return order, nil
}
