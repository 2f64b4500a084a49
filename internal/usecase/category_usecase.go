package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category, productIDs []uuid.UUID) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, params domain.ListParams) (domain.Page[domain.Category], error)
}

type categoryUseCase struct {
	categoryRepo    domain.CategoryRepository
	productRepo     domain.ProductRepository
	defaultPageSize int
	log             *logrus.Logger
}

func NewCategoryUseCase(cRepo domain.CategoryRepository, pRepo domain.ProductRepository, defaultPageSize int, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo:    cRepo,
		productRepo:     pRepo,
		defaultPageSize: defaultPageSize,
		log:             logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if err := validateStruct(category); err != nil {
		uc.log.Warnf("Use Case: Rejected category: %v", err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create category '%s'", category.Name)
	created, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Category '%s' created successfully with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %s: %v", id, err)
		return nil, err
	}
	return category, nil
}

// UpdateCategory saves the category and then moves productIDs into it.
// The two writes are sequential.
func (uc *categoryUseCase) UpdateCategory(ctx context.Context, category *domain.Category, productIDs []uuid.UUID) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if err := validateStruct(category); err != nil {
		uc.log.Warnf("Use Case: Rejected update for category ID %s: %v", category.ID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to update category ID %s", category.ID)
	updated, err := uc.categoryRepo.UpdateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update category ID %s: %v", category.ID, err)
		return nil, err
	}

	if len(productIDs) > 0 {
		n, err := uc.productRepo.AssignCategory(ctx, productIDs, updated.ID)
		if err != nil {
			uc.log.Errorf("Use Case: Category %s updated but product reassignment failed: %v", updated.ID, err)
			return nil, err
		}
		uc.log.Infof("Use Case: Moved %d of %d products into category %s", n, len(productIDs), updated.ID)
	}
	return updated, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	uc.log.Infof("Use Case: Attempting to delete category with ID %s", id)
	if err := uc.categoryRepo.DeleteCategory(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete category ID %s: %v", id, err)
		return err
	}
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, params domain.ListParams) (domain.Page[domain.Category], error) {
	params = params.Normalize(uc.defaultPageSize)
	categories, total, err := uc.categoryRepo.ListCategories(ctx, params)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(categories, total, params), nil
}
