package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, description, price, stock, category_id, image_url, created_at`

var productSorts = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

type postgresProductRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sqlx.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, description, price, stock, category_id, image_url)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.CategoryID, product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warnf("Repository: Attempted to create product with non-existent category ID: %v", product.CategoryID)
			return nil, domain.Invalid("category with id %v does not exist", product.CategoryID)
		}
		if msg, ok := checkViolation(err); ok {
			r.log.Warnf("Repository: Check constraint violation for product '%s': %s", product.Name, msg)
			return nil, domain.Invalid("product data constraint violation: %s", msg)
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Repository: Product created with ID: %s, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.db.GetContext(ctx, product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, domain.NotFound("product", id)
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	setClauses := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.Price != nil {
		set("price", *update.Price)
	}
	if update.Stock != nil {
		set("stock", *update.Stock)
	}
	if update.ClearCategory {
		set("category_id", nil)
	} else if update.CategoryID != nil {
		set("category_id", *update.CategoryID)
	}
	if update.ImageURL != nil {
		set("image_url", *update.ImageURL)
	}

	if len(setClauses) == 0 {
		r.log.Infof("Repository: No fields provided for product update ID %s. Returning current product.", id)
		return r.GetProductByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + productColumns

	r.log.Debugf("Repository: Executing partial update query for ID %s: %s", id, query)

	product := &domain.Product{}
	err := r.db.GetContext(ctx, product, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found for update", id)
			return nil, domain.NotFound("product", id)
		}
		if isForeignKeyViolation(err) {
			r.log.Warnf("Repository: Attempted to update product ID %s with non-existent category ID: %v", id, update.CategoryID)
			return nil, domain.Invalid("category with id %v does not exist", update.CategoryID)
		}
		if msg, ok := checkViolation(err); ok {
			r.log.Warnf("Repository: Check constraint violation for product update ID %s: %s", id, msg)
			return nil, domain.Invalid("product data constraint violation: %s", msg)
		}
		r.log.Errorf("Repository: Failed to execute partial update for product ID %s: %v", id, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	r.log.Infof("Repository: Partial update successful for product ID %s", id)
	return product, nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting product ID %s: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %s", id)
		return domain.NotFound("product", id)
	}
	r.log.Infof("Repository: Product deleted with ID: %s", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, params domain.ListParams) ([]domain.Product, int, error) {
	q := newListQuery("products", productColumns).
		Search(params.Search, "name", "description")
	if params.CategoryID != nil {
		q.Where("category_id = ?", *params.CategoryID)
	}
	if params.MinPrice != nil {
		q.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		q.Where("price <= ?", *params.MaxPrice)
	}
	if params.InStock {
		q.Where("stock > 0")
	}
	q.Sort(params.Sort, params.Desc, productSorts, "created_at", "id").
		Page(params.PageSize, params.Offset())

	var total int
	countSQL, countArgs := q.CountSQL(r.db)
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		r.log.Errorf("Repository: Failed to count products: %v", err)
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	products := []domain.Product{}
	selectSQL, selectArgs := q.SelectSQL(r.db)
	if err := r.db.SelectContext(ctx, &products, selectSQL, selectArgs...); err != nil {
		r.log.Errorf("Repository: Failed to list products (page %d, size %d): %v", params.Page, params.PageSize, err)
		return nil, 0, fmt.Errorf("could not list products: %w", err)
	}

	r.log.Infof("Repository: Retrieved %d of %d products (page %d, size %d)", len(products), total, params.Page, params.PageSize)
	return products, total, nil
}

func (r *postgresProductRepository) AssignCategory(ctx context.Context, productIDs []uuid.UUID, categoryID uuid.UUID) (int, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET category_id = $1 WHERE id = ANY($2::uuid[])`, categoryID, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Repository: Failed to assign %d products to category %s: %v", len(productIDs), categoryID, err)
		return 0, fmt.Errorf("could not assign products to category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not confirm category assignment: %w", err)
	}
	r.log.Infof("Repository: Assigned %d products to category %s", n, categoryID)
	return int(n), nil
}

func (r *postgresProductRepository) ListColors(ctx context.Context, productID uuid.UUID) ([]domain.ProductColor, error) {
	colors := []domain.ProductColor{}
	err := r.db.SelectContext(ctx, &colors,
		`SELECT id, product_id, name, hex_code FROM product_colors WHERE product_id = $1 ORDER BY name ASC`, productID)
	if err != nil {
		r.log.Errorf("Repository: Failed to list colors for product %s: %v", productID, err)
		return nil, fmt.Errorf("could not list product colors: %w", err)
	}
	if len(colors) == 0 {
		return colors, nil
	}

	colorIDs := make([]string, len(colors))
	index := make(map[uuid.UUID]int, len(colors))
	for i := range colors {
		colorIDs[i] = colors[i].ID.String()
		index[colors[i].ID] = i
		colors[i].Images = []domain.ProductColorImage{}
		colors[i].Sizes = []domain.ProductColorSize{}
	}

	var images []domain.ProductColorImage
	err = r.db.SelectContext(ctx, &images,
		`SELECT id, color_id, image_url, position FROM product_color_images
         WHERE color_id = ANY($1::uuid[]) ORDER BY position ASC`, pq.Array(colorIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to list color images for product %s: %v", productID, err)
		return nil, fmt.Errorf("could not list product color images: %w", err)
	}
	for _, img := range images {
		i := index[img.ColorID]
		colors[i].Images = append(colors[i].Images, img)
	}

	var sizes []domain.ProductColorSize
	err = r.db.SelectContext(ctx, &sizes,
		`SELECT id, color_id, size, stock FROM product_color_sizes
         WHERE color_id = ANY($1::uuid[]) ORDER BY size ASC`, pq.Array(colorIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to list color sizes for product %s: %v", productID, err)
		return nil, fmt.Errorf("could not list product color sizes: %w", err)
	}
	for _, s := range sizes {
		i := index[s.ColorID]
		colors[i].Sizes = append(colors[i].Sizes, s)
	}

	r.log.Debugf("Repository: Retrieved %d colors for product %s", len(colors), productID)
	return colors, nil
}

func (r *postgresProductRepository) DeleteColors(ctx context.Context, productID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = $1`, productID); err != nil {
		r.log.Errorf("Repository: Failed to delete colors for product %s: %v", productID, err)
		return fmt.Errorf("could not delete product colors: %w", err)
	}
	return nil
}

func (r *postgresProductRepository) InsertColor(ctx context.Context, color *domain.ProductColor) (*domain.ProductColor, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO product_colors (product_id, name, hex_code) VALUES ($1, $2, $3) RETURNING id`,
		color.ProductID, color.Name, color.HexCode,
	).Scan(&color.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NotFound("product", color.ProductID)
		}
		if isUniqueViolation(err) {
			return nil, domain.Conflict("color %q for product %s", color.Name, color.ProductID)
		}
		r.log.Errorf("Repository: Failed to insert color '%s' for product %s: %v", color.Name, color.ProductID, err)
		return nil, fmt.Errorf("could not create product color: %w", err)
	}
	return color, nil
}

func (r *postgresProductRepository) InsertColorImages(ctx context.Context, colorID uuid.UUID, images []domain.ProductColorImage) error {
	if len(images) == 0 {
		return nil
	}
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO product_color_images (color_id, image_url, position) VALUES ($1, $2, $3)`)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare color image statement: %v", err)
		return fmt.Errorf("could not prepare color image statement: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		if _, err := stmt.ExecContext(ctx, colorID, img.ImageURL, img.Position); err != nil {
			r.log.Errorf("Repository: Failed to insert image for color %s: %v", colorID, err)
			return fmt.Errorf("could not create color image: %w", err)
		}
	}
	return nil
}

func (r *postgresProductRepository) InsertColorSizes(ctx context.Context, colorID uuid.UUID, sizes []domain.ProductColorSize) error {
	if len(sizes) == 0 {
		return nil
	}
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO product_color_sizes (color_id, size, stock) VALUES ($1, $2, $3)`)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare color size statement: %v", err)
		return fmt.Errorf("could not prepare color size statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range sizes {
		if _, err := stmt.ExecContext(ctx, colorID, s.Size, s.Stock); err != nil {
			if isUniqueViolation(err) {
				return domain.Conflict("size %q for color %s", s.Size, colorID)
			}
			r.log.Errorf("Repository: Failed to insert size '%s' for color %s: %v", s.Size, colorID, err)
			return fmt.Errorf("could not create color size: %w", err)
		}
	}
	return nil
}
