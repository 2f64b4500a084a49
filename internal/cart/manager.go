// Package cart holds the per-user cart state and keeps it in step with the
// cart rows in the store.
package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Manager is the cart of one user. Local lines change only after the
// matching remote write succeeded. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	store  domain.CartRepository
	userID uuid.UUID
	lines  []domain.CartLine
	log    *logrus.Logger
}

func NewManager(store domain.CartRepository, userID uuid.UUID, logger *logrus.Logger) *Manager {
	return &Manager{
		store:  store,
		userID: userID,
		lines:  []domain.CartLine{},
		log:    logger,
	}
}

func (m *Manager) UserID() uuid.UUID {
	return m.userID
}

// Load replaces the local lines with the user's cart rows joined with their
// products.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.store.ListCartLines(ctx, m.userID)
	if err != nil {
		m.log.Errorf("Cart: Failed to load cart of user %s: %v", m.userID, err)
		return fmt.Errorf("load cart: %w", err)
	}
	m.lines = lines
	m.log.Debugf("Cart: Loaded %d lines for user %s", len(lines), m.userID)
	return nil
}

// Add puts quantity units of the product in the cart. A zero quantity means
// one unit. The store increments an existing (user, product) row in place and
// the returned row replaces the local one. Stock is not checked.
func (m *Manager) Add(ctx context.Context, productID uuid.UUID, quantity int) (domain.CartLine, error) {
	if quantity < 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	line, err := m.store.AddCartItem(ctx, m.userID, productID, quantity)
	if err != nil {
		m.log.Errorf("Cart: Failed to add product %s for user %s: %v", productID, m.userID, err)
		return domain.CartLine{}, fmt.Errorf("add to cart: %w", err)
	}
	if i := m.indexByID(line.ID); i >= 0 {
		m.lines[i] = *line
	} else {
		m.lines = append(m.lines, *line)
	}
	m.log.Infof("Cart: Item %s of user %s now holds %d units", line.ID, m.userID, line.Quantity)
	return *line, nil
}

// UpdateQuantity sets the quantity of a line. Quantities below one remove it.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return m.Remove(ctx, itemID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexByID(itemID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, itemID)
	}
	if err := m.store.UpdateCartItemQuantity(ctx, m.userID, itemID, quantity); err != nil {
		m.log.Errorf("Cart: Failed to set quantity of item %s: %v", itemID, err)
		return fmt.Errorf("update cart quantity: %w", err)
	}
	m.lines[i].Quantity = quantity
	return nil
}

func (m *Manager) Remove(ctx context.Context, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexByID(itemID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, itemID)
	}
	if err := m.store.DeleteCartItem(ctx, m.userID, itemID); err != nil {
		m.log.Errorf("Cart: Failed to remove item %s: %v", itemID, err)
		return fmt.Errorf("remove from cart: %w", err)
	}
	m.lines = append(m.lines[:i], m.lines[i+1:]...)
	m.log.Infof("Cart: Removed item %s for user %s", itemID, m.userID)
	return nil
}

// Clear deletes every cart row of the user.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ClearCart(ctx, m.userID); err != nil {
		m.log.Errorf("Cart: Failed to clear cart of user %s: %v", m.userID, err)
		return fmt.Errorf("clear cart: %w", err)
	}
	m.lines = []domain.CartLine{}
	return nil
}

// Total is the sum of price × quantity over the current lines.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, l := range m.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines.
func (m *Manager) Lines() []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CartLine{}, m.lines...)
}

// Count is the number of units across all lines.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.lines {
		n += l.Quantity
	}
	return n
}

func (m *Manager) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines) == 0
}

// Snapshot is the serializable view of the cart.
type Snapshot struct {
	UserID uuid.UUID         `json:"user_id"`
	Lines  []domain.CartLine `json:"items"`
	Count  int               `json:"count"`
	Total  decimal.Decimal   `json:"total"`
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{UserID: m.userID, Lines: append([]domain.CartLine{}, m.lines...), Total: decimal.Zero}
	for _, l := range m.lines {
		s.Count += l.Quantity
		s.Total = s.Total.Add(l.Subtotal())
	}
	return s
}

func (m *Manager) indexByID(itemID uuid.UUID) int {
	for i, l := range m.lines {
		if l.ID == itemID {
			return i
		}
	}
	return -1
}
