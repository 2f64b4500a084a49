package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// cartLineColumns selects a cart row aliased as c and its product aliased as
// p; the dotted names map onto CartLine.Product.
const cartLineColumns = `
        c.id, c.user_id, c.product_id, c.quantity, c.created_at,
        p.id AS "product.id", p.name AS "product.name", p.description AS "product.description",
        p.price AS "product.price", p.stock AS "product.stock", p.category_id AS "product.category_id",
        p.image_url AS "product.image_url", p.created_at AS "product.created_at"`

type postgresCartRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sqlx.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) ListCartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        WHERE c.user_id = $1
        ORDER BY c.created_at ASC, c.id ASC`

	lines := []domain.CartLine{}
	if err := r.db.SelectContext(ctx, &lines, query, userID); err != nil {
		r.log.Errorf("Repository: Failed to list cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not list cart items: %w", err)
	}
	r.log.Debugf("Repository: Loaded %d cart lines for user %s", len(lines), userID)
	return lines, nil
}

func (r *postgresCartRepository) AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartLine, error) {
	query := `
        WITH c AS (
            INSERT INTO cart_items (user_id, product_id, quantity)
            VALUES ($1, $2, $3)
            ON CONFLICT (user_id, product_id)
            DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
            RETURNING id, user_id, product_id, quantity, created_at
        )
        SELECT ` + cartLineColumns + `
        FROM c
        JOIN products p ON p.id = c.product_id`

	line := &domain.CartLine{}
	err := r.db.GetContext(ctx, line, query, userID, productID, quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warnf("Repository: Attempted to add non-existent product %s to cart of user %s", productID, userID)
			return nil, domain.NotFound("product", productID)
		}
		if _, ok := checkViolation(err); ok {
			return nil, domain.ErrInvalidQuantity
		}
		r.log.Errorf("Repository: Failed to add product %s to cart of user %s: %v", productID, userID, err)
		return nil, fmt.Errorf("could not add cart item: %w", err)
	}
	r.log.Infof("Repository: Cart item %s for user %s now holds %d of product %s", line.ID, userID, line.Quantity, productID)
	return line, nil
}

func (r *postgresCartRepository) UpdateCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE id = $2 AND user_id = $3`, quantity, itemID, userID)
	if err != nil {
		if _, ok := checkViolation(err); ok {
			return domain.ErrInvalidQuantity
		}
		r.log.Errorf("Repository: Failed to update cart item %s: %v", itemID, err)
		return fmt.Errorf("could not update cart item: %w", err)
	}
	return r.expectOne(result, itemID)
}

func (r *postgresCartRepository) DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete cart item %s: %v", itemID, err)
		return fmt.Errorf("could not delete cart item: %w", err)
	}
	return r.expectOne(result, itemID)
}

func (r *postgresCartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to clear cart of user %s: %v", userID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}
	n, _ := result.RowsAffected()
	r.log.Infof("Repository: Cleared %d cart items for user %s", n, userID)
	return nil
}

func (r *postgresCartRepository) expectOne(result sql.Result, itemID uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm cart update: %w", err)
	}
	if n == 0 {
		r.log.Warnf("Repository: Cart item %s not found", itemID)
		return fmt.Errorf("%w: %s", domain.ErrCartItemNotFound, itemID)
	}
	return nil
}

