package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const orderColumns = `id, user_id, total_amount, status, created_at`

var orderSorts = map[string]string{
	"created_at":   "created_at",
	"total_amount": "total_amount",
	"status":       "status",
}

type postgresOrderRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sqlx.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	query := `
        INSERT INTO orders (user_id, total_amount, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, order.UserID, order.TotalAmount, order.Status).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if msg, ok := checkViolation(err); ok {
			return nil, domain.Invalid("order constraint violation: %s", msg)
		}
		r.log.Errorf("Repository: Error inserting order for user %s: %v", order.UserID, err)
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	r.log.Infof("Repository: Order %s inserted for user %s, total %s", order.ID, order.UserID, order.TotalAmount)
	return order, nil
}

// InsertOrderItems writes items one by one. On failure it returns the items
// written so far together with the error.
func (r *postgresOrderRepository) InsertOrderItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) ([]domain.OrderItem, error) {
	inserted := make([]domain.OrderItem, 0, len(items))
	if len(items) == 0 {
		return inserted, nil
	}

	stmt, err := r.db.PrepareContext(ctx, `
        INSERT INTO order_items (order_id, product_id, quantity, price)
        VALUES ($1, $2, $3, $4)
        RETURNING id`)
	if err != nil {
		r.log.Errorf("Repository: Error preparing order item statement for order %s: %v", orderID, err)
		return inserted, fmt.Errorf("failed to prepare order item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		item.OrderID = orderID
		if err := stmt.QueryRowContext(ctx, orderID, item.ProductID, item.Quantity, item.Price).Scan(&item.ID); err != nil {
			r.log.Errorf("Repository: Error inserting item (Product %s) for order %s: %v", item.ProductID, orderID, err)
			if msg, ok := checkViolation(err); ok {
				return inserted, domain.Invalid("order item constraint violation: %s", msg)
			}
			if isForeignKeyViolation(err) {
				return inserted, domain.NotFound("order", orderID)
			}
			return inserted, fmt.Errorf("failed to insert order item for product %s: %w", item.ProductID, err)
		}
		inserted = append(inserted, item)
	}
	return inserted, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.GetContext(ctx, order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order %s not found", id)
			return nil, domain.NotFound("order", id)
		}
		r.log.Errorf("Repository: Error fetching order %s: %v", id, err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []domain.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.GetContext(ctx, order,
		`UPDATE orders SET status = $1 WHERE id = $2 RETURNING `+orderColumns, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order %s not found for status update", id)
			return nil, domain.NotFound("order", id)
		}
		if msg, ok := checkViolation(err); ok {
			return nil, domain.Invalid("order constraint violation: %s", msg)
		}
		r.log.Errorf("Repository: Error updating status for order %s: %v", id, err)
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	r.log.Infof("Repository: Order %s status updated to %s", id, status)

	orders := []domain.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, params domain.ListParams) ([]domain.Order, int, error) {
	q := newListQuery("orders", orderColumns)
	if params.UserID != nil {
		q.Where("user_id = ?", *params.UserID)
	}
	if params.Status != "" {
		q.Where("status = ?", params.Status)
	}
	q.Sort(params.Sort, params.Desc, orderSorts, "created_at", "id").
		Page(params.PageSize, params.Offset())

	var total int
	countSQL, countArgs := q.CountSQL(r.db)
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		r.log.Errorf("Repository: Error counting orders: %v", err)
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := []domain.Order{}
	selectSQL, selectArgs := q.SelectSQL(r.db)
	if err := r.db.SelectContext(ctx, &orders, selectSQL, selectArgs...); err != nil {
		r.log.Errorf("Repository: Error listing orders: %v", err)
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	r.log.Infof("Repository: Retrieved %d of %d orders", len(orders), total)
	return orders, total, nil
}

// attachItems loads the items of all given orders with a single query.
func (r *postgresOrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID.String()
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	var items []domain.OrderItem
	err := r.db.SelectContext(ctx, &items, `
        SELECT id, order_id, product_id, quantity, price
        FROM order_items
        WHERE order_id = ANY($1::uuid[])
        ORDER BY id`, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Repository: Error fetching items for %d orders: %v", len(orders), err)
		return fmt.Errorf("failed to get order items: %w", err)
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}
