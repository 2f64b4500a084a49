package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, params domain.ListParams) (domain.Page[domain.Product], error)
	ReplaceColors(ctx context.Context, productID uuid.UUID, colors []domain.ProductColor) ([]domain.ProductColor, error)
}

type productUseCase struct {
	productRepo     domain.ProductRepository
	categoryRepo    domain.CategoryRepository
	defaultPageSize int
	log             *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, defaultPageSize int, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:     pRepo,
		categoryRepo:    cRepo,
		defaultPageSize: defaultPageSize,
		log:             logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := validateStruct(product); err != nil {
		uc.log.Warnf("Use Case: Rejected product '%s': %v", product.Name, err)
		return nil, err
	}
	if err := domain.ValidatePrice(product.Price); err != nil {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid price: %s", product.Name, product.Price)
		return nil, err
	}
	if product.CategoryID != nil {
		if _, err := uc.categoryRepo.GetCategoryByID(ctx, *product.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category ID %s not found during product creation: %v", *product.CategoryID, err)
			return nil, domain.Invalid("category with id %s does not exist", *product.CategoryID)
		}
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", created.Name, created.ID)
	return created, nil
}

// GetProductByID returns the product with its colour variants.
func (uc *productUseCase) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %s: %v", id, err)
		return nil, err
	}
	colors, err := uc.productRepo.ListColors(ctx, id)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load colors of product %s: %v", id, err)
		return nil, err
	}
	product.Colors = colors
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	if update.IsEmpty() {
		uc.log.Warnf("Use Case: Attempted update for product ID %s with no fields", id)
		return uc.productRepo.GetProductByID(ctx, id)
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}
	if err := validateStruct(update); err != nil {
		uc.log.Warnf("Use Case: Rejected update for product ID %s: %v", id, err)
		return nil, err
	}
	if update.Price != nil {
		if err := domain.ValidatePrice(*update.Price); err != nil {
			uc.log.Warnf("Use Case: Rejected price %s for product ID %s", *update.Price, id)
			return nil, err
		}
	}
	if update.CategoryID != nil && !update.ClearCategory {
		if _, err := uc.categoryRepo.GetCategoryByID(ctx, *update.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category ID %s not found for product update %s: %v", *update.CategoryID, id, err)
			return nil, domain.Invalid("category with id %s does not exist", *update.CategoryID)
		}
	}

	uc.log.Infof("Use Case: Applying update to product ID %s", id)
	product, err := uc.productRepo.UpdateProduct(ctx, id, update)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product ID %s: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	uc.log.Infof("Use Case: Attempting to delete product with ID %s", id)
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete product ID %s: %v", id, err)
		return err
	}
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, params domain.ListParams) (domain.Page[domain.Product], error) {
	params = params.Normalize(uc.defaultPageSize)
	if params.MinPrice != nil && params.MaxPrice != nil && params.MinPrice.GreaterThan(*params.MaxPrice) {
		return domain.Page[domain.Product]{}, domain.Invalid("min_price cannot exceed max_price")
	}

	products, total, err := uc.productRepo.ListProducts(ctx, params)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return domain.Page[domain.Product]{}, err
	}
	uc.log.Infof("Use Case: Listed %d products (page %d of %d)", len(products), params.Page, domain.TotalPages(total, params.PageSize))
	return domain.NewPage(products, total, params), nil
}

// ReplaceColors swaps the colour variants of a product: existing colours are
// deleted, then each colour is written followed by its images and sizes.
// The writes are sequential; a failure after the first write returns
// domain.ErrPartialProductEdit and leaves the earlier writes in place.
func (uc *productUseCase) ReplaceColors(ctx context.Context, productID uuid.UUID, colors []domain.ProductColor) ([]domain.ProductColor, error) {
	seen := make(map[string]bool, len(colors))
	for i := range colors {
		colors[i].Name = strings.TrimSpace(colors[i].Name)
		if err := validateStruct(colors[i]); err != nil {
			return nil, err
		}
		key := strings.ToLower(colors[i].Name)
		if seen[key] {
			return nil, domain.Invalid("duplicate color %q", colors[i].Name)
		}
		seen[key] = true
	}
	if _, err := uc.productRepo.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Replacing colors of product %s with %d colors", productID, len(colors))
	if err := uc.productRepo.DeleteColors(ctx, productID); err != nil {
		uc.log.Errorf("Use Case: Failed to delete colors of product %s: %v", productID, err)
		return nil, err
	}

	partial := func(step string, err error) error {
		uc.log.Errorf("Use Case: Color edit of product %s stopped at %s: %v", productID, step, err)
		return fmt.Errorf("%w: %s: %w", domain.ErrPartialProductEdit, step, err)
	}
	for _, c := range colors {
		c.ProductID = productID
		created, err := uc.productRepo.InsertColor(ctx, &c)
		if err != nil {
			return nil, partial("color "+c.Name, err)
		}
		if err := uc.productRepo.InsertColorImages(ctx, created.ID, c.Images); err != nil {
			return nil, partial("images of color "+c.Name, err)
		}
		if err := uc.productRepo.InsertColorSizes(ctx, created.ID, c.Sizes); err != nil {
			return nil, partial("sizes of color "+c.Name, err)
		}
	}

	return uc.productRepo.ListColors(ctx, productID)
}
