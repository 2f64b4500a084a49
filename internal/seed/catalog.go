package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML document accepted by `storefront seed`.
type Catalog struct {
	Admin      *AdminUser `yaml:"admin"`
	Categories []Category `yaml:"categories"`
}

type AdminUser struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
}

type Category struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Products    []Product `yaml:"products"`
}

type Product struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       string  `yaml:"price"`
	Stock       int     `yaml:"stock"`
	ImageURL    string  `yaml:"image_url"`
	Colors      []Color `yaml:"colors"`
}

type Color struct {
	Name   string   `yaml:"name"`
	Hex    string   `yaml:"hex"`
	Images []string `yaml:"images"`
	Sizes  []Size   `yaml:"sizes"`
}

type Size struct {
	Size  string `yaml:"size"`
	Stock int    `yaml:"stock"`
}

// Result counts what Apply wrote.
type Result struct {
	Categories int
	Products   int
	Skipped    int
	Admin      bool
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return nil, domain.Invalid("category #%d has no name", i+1)
		}
		for _, p := range cat.Products {
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return nil, domain.Invalid("product %q has an invalid price %q", p.Name, p.Price)
			}
			if err := domain.ValidatePrice(price); err != nil {
				return nil, fmt.Errorf("product %q: %w", p.Name, err)
			}
		}
	}
	return &c, nil
}

type Seeder struct {
	products   usecase.ProductUseCase
	categories usecase.CategoryUseCase
	auth       usecase.AuthUseCase
	log        *logrus.Logger
}

func NewSeeder(products usecase.ProductUseCase, categories usecase.CategoryUseCase, auth usecase.AuthUseCase, logger *logrus.Logger) *Seeder {
	return &Seeder{products: products, categories: categories, auth: auth, log: logger}
}

// Apply writes the catalog through the use cases. Categories are matched by
// name and products by name within their category, so a second run only adds
// what is missing.
func (s *Seeder) Apply(ctx context.Context, c *Catalog) (*Result, error) {
	res := &Result{}

	if c.Admin != nil {
		created, err := s.seedAdmin(ctx, c.Admin)
		if err != nil {
			return res, err
		}
		res.Admin = created
	}

	for _, cat := range c.Categories {
		category, created, err := s.ensureCategory(ctx, cat)
		if err != nil {
			return res, err
		}
		if created {
			res.Categories++
		}

		for _, p := range cat.Products {
			exists, err := s.productExists(ctx, category, p.Name)
			if err != nil {
				return res, err
			}
			if exists {
				s.log.Debugf("Seed: Product %q already exists in %q, skipping", p.Name, category.Name)
				res.Skipped++
				continue
			}
			if err := s.createProduct(ctx, category, p); err != nil {
				return res, err
			}
			res.Products++
		}
	}

	s.log.Infof("Seed: Created %d categories and %d products (%d skipped)", res.Categories, res.Products, res.Skipped)
	return res, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, a *AdminUser) (bool, error) {
	_, err := s.auth.AdminCreateUser(ctx, a.Email, a.Password, a.DisplayName, true)
	switch {
	case err == nil:
		s.log.Infof("Seed: Created admin user %s", a.Email)
		return true, nil
	case errors.Is(err, domain.ErrConflict):
		s.log.Infof("Seed: Admin user %s already exists", a.Email)
		return false, nil
	default:
		return false, fmt.Errorf("failed to seed admin user %s: %w", a.Email, err)
	}
}

func (s *Seeder) ensureCategory(ctx context.Context, cat Category) (*domain.Category, bool, error) {
	page, err := s.categories.ListCategories(ctx, domain.ListParams{Search: cat.Name, PageSize: domain.MaxPageSize})
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up category %q: %w", cat.Name, err)
	}
	for i := range page.Items {
		if strings.EqualFold(page.Items[i].Name, cat.Name) {
			return &page.Items[i], false, nil
		}
	}

	created, err := s.categories.CreateCategory(ctx, &domain.Category{Name: cat.Name, Description: cat.Description})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create category %q: %w", cat.Name, err)
	}
	return created, true, nil
}

func (s *Seeder) productExists(ctx context.Context, category *domain.Category, name string) (bool, error) {
	page, err := s.products.ListProducts(ctx, domain.ListParams{
		Search:     name,
		CategoryID: &category.ID,
		PageSize:   domain.MaxPageSize,
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up product %q: %w", name, err)
	}
	for _, p := range page.Items {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Seeder) createProduct(ctx context.Context, category *domain.Category, p Product) error {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return domain.Invalid("product %q has an invalid price %q", p.Name, p.Price)
	}
	categoryID := category.ID
	product, err := s.products.CreateProduct(ctx, &domain.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		CategoryID:  &categoryID,
		ImageURL:    p.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create product %q: %w", p.Name, err)
	}
	if len(p.Colors) == 0 {
		return nil
	}

	colors := make([]domain.ProductColor, 0, len(p.Colors))
	for _, c := range p.Colors {
		color := domain.ProductColor{Name: c.Name, HexCode: c.Hex}
		for i, url := range c.Images {
			color.Images = append(color.Images, domain.ProductColorImage{ImageURL: url, Position: i})
		}
		for _, sz := range c.Sizes {
			color.Sizes = append(color.Sizes, domain.ProductColorSize{Size: sz.Size, Stock: sz.Stock})
		}
		colors = append(colors, color)
	}
	if _, err := s.products.ReplaceColors(ctx, product.ID, colors); err != nil {
		return fmt.Errorf("failed to add colors to product %q: %w", p.Name, err)
	}
	return nil
}
