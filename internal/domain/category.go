package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"        validate:"required,max=120"`
	Description string    `json:"description" db:"description" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, params ListParams) ([]Category, int, error)
}
