package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(12,2): two decimal places, below PriceLimit.
const PriceScale = 2

var PriceLimit = decimal.New(1, 10)

// ValidatePrice rejects prices the money columns would round or overflow.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return Invalid("price cannot be negative")
	}
	if !price.Equal(price.Truncate(PriceScale)) {
		return Invalid("price %s has more than %d decimal places", price, PriceScale)
	}
	if price.GreaterThanOrEqual(PriceLimit) {
		return Invalid("price %s must be below %s", price, PriceLimit)
	}
	return nil
}

type Product struct {
	ID          uuid.UUID       `json:"id"                    db:"id"`
	Name        string          `json:"name"                  db:"name"        validate:"required,max=200"`
	Description string          `json:"description"           db:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"                 db:"price"`
	Stock       int             `json:"stock"                 db:"stock"       validate:"gte=0"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	ImageURL    string          `json:"image_url"             db:"image_url"   validate:"omitempty,url"`
	CreatedAt   time.Time       `json:"created_at"            db:"created_at"`

	Colors []ProductColor `json:"colors,omitempty" db:"-"`
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name          *string          `json:"name"           validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"    validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock"          validate:"omitempty,gte=0"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	ImageURL      *string          `json:"image_url"      validate:"omitempty,url"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Stock == nil &&
		u.CategoryID == nil && !u.ClearCategory && u.ImageURL == nil
}

type ProductColor struct {
	ID        uuid.UUID           `json:"id"         db:"id"`
	ProductID uuid.UUID           `json:"product_id" db:"product_id"`
	Name      string              `json:"name"       db:"name"     validate:"required,max=60"`
	HexCode   string              `json:"hex_code"   db:"hex_code" validate:"omitempty,hexcolor"`
	Images    []ProductColorImage `json:"images"     db:"-"        validate:"dive"`
	Sizes     []ProductColorSize  `json:"sizes"      db:"-"        validate:"dive"`
}

type ProductColorImage struct {
	ID       uuid.UUID `json:"id"        db:"id"`
	ColorID  uuid.UUID `json:"color_id"  db:"color_id"`
	ImageURL string    `json:"image_url" db:"image_url" validate:"required,url"`
	Position int       `json:"position"  db:"position"  validate:"gte=0"`
}

type ProductColorSize struct {
	ID      uuid.UUID `json:"id"       db:"id"`
	ColorID uuid.UUID `json:"color_id" db:"color_id"`
	Size    string    `json:"size"     db:"size"  validate:"required,max=20"`
	Stock   int       `json:"stock"    db:"stock" validate:"gte=0"`
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, params ListParams) ([]Product, int, error)
	AssignCategory(ctx context.Context, productIDs []uuid.UUID, categoryID uuid.UUID) (int, error)

	ListColors(ctx context.Context, productID uuid.UUID) ([]ProductColor, error)
	DeleteColors(ctx context.Context, productID uuid.UUID) error
	InsertColor(ctx context.Context, color *ProductColor) (*ProductColor, error)
	InsertColorImages(ctx context.Context, colorID uuid.UUID, images []ProductColorImage) error
	InsertColorSizes(ctx context.Context, colorID uuid.UUID, sizes []ProductColorSize) error
}
