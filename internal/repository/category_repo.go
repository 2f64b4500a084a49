package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const categoryColumns = `id, name, description, created_at`

var categorySorts = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type postgresCategoryRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sqlx.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Attempted to create category with duplicate name: %s", category.Name)
			return nil, domain.Conflict("category with name '%s'", category.Name)
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Category created successfully with ID: %s, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.GetContext(ctx, category, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %s not found", id)
			return nil, domain.NotFound("category", id)
		}
		r.log.Errorf("Failed to get category by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE categories SET name = $1, description = $2 WHERE id = $3 RETURNING ` + categoryColumns
	updated := &domain.Category{}
	err := r.db.GetContext(ctx, updated, query, category.Name, category.Description, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Attempted to update category ID %s with duplicate name: %s", category.ID, category.Name)
			return nil, domain.Conflict("category with name '%s'", category.Name)
		}
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %s not found for update", category.ID)
			return nil, domain.NotFound("category", category.ID)
		}
		r.log.Errorf("Failed to update category ID %s: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	r.log.Infof("Category updated successfully with ID: %s", updated.ID)
	return updated, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete category ID %s: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting category ID %s: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %s", id)
		return domain.NotFound("category", id)
	}

	r.log.Infof("Category deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context, params domain.ListParams) ([]domain.Category, int, error) {
	q := newListQuery("categories", categoryColumns).
		Search(params.Search, "name").
		Sort(params.Sort, params.Desc, categorySorts, "name", "id").
		Page(params.PageSize, params.Offset())

	var total int
	countSQL, countArgs := q.CountSQL(r.db)
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		r.log.Errorf("Failed to count categories: %v", err)
		return nil, 0, fmt.Errorf("could not count categories: %w", err)
	}

	categories := []domain.Category{}
	selectSQL, selectArgs := q.SelectSQL(r.db)
	if err := r.db.SelectContext(ctx, &categories, selectSQL, selectArgs...); err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, 0, fmt.Errorf("could not list categories: %w", err)
	}

	r.log.Infof("Retrieved %d of %d categories", len(categories), total)
	return categories, total, nil
}
