package seed

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository/memstore"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
admin:
  email: Admin@Example.com
  password: Sup3rSecret
  display_name: Shop Admin
categories:
  - name: Shoes
    description: Everyday footwear
    products:
      - name: Runner
        price: "59.90"
        stock: 12
        colors:
          - name: Red
            hex: "#ff0000"
            images: ["https://cdn.example.com/runner-red.jpg"]
            sizes:
              - {size: "42", stock: 4}
              - {size: "43", stock: 8}
      - name: Loafer
        price: "80"
        stock: 3
  - name: Bags
    products:
      - name: Tote
        price: "25.00"
        stock: 0
`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newSeeder(store *memstore.Store, adminUsers bool) *Seeder {
	log := testLogger()
	return NewSeeder(
		usecase.NewProductUseCase(store, store, 12, log),
		usecase.NewCategoryUseCase(store, store, 12, log),
		usecase.NewAuthUseCase(store, store, auth.NewTokenIssuer("seed-test-secret-0123456789"), time.Hour, adminUsers, log),
		log,
	)
}

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	require.NotNil(t, c.Admin)
	require.Len(t, c.Categories, 2)
	assert.Equal(t, "59.90", c.Categories[0].Products[0].Price)
	assert.Len(t, c.Categories[0].Products[0].Colors[0].Sizes, 2)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(strings.NewReader("categories:\n  - name: X\n    products:\n      - name: Y\n        price: cheap\n"))
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)

	_, err = Load(strings.NewReader("categories:\n  - description: nameless\n"))
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)

	_, err = Load(strings.NewReader("unknown_key: true\n"))
	assert.Error(t, err)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newSeeder(store, true)
	c, err := Load(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	res, err := s.Apply(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, &Result{Categories: 2, Products: 3, Admin: true}, res)

	products, total, err := store.ListProducts(ctx, domain.ListParams{Search: "Runner"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.True(t, decimal.RequireFromString("59.90").Equal(products[0].Price))
	require.NotNil(t, products[0].CategoryID)

	colors, err := store.ListColors(ctx, products[0].ID)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Len(t, colors[0].Sizes, 2)
	assert.Len(t, colors[0].Images, 1)

	admin, err := store.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	profile, err := store.GetProfileByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)

	again, err := s.Apply(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, &Result{Skipped: 3}, again)
}

func TestApplyAdminDisabled(t *testing.T) {
	store := memstore.New()
	s := newSeeder(store, false)

	res, err := s.Apply(context.Background(), &Catalog{Admin: &AdminUser{Email: "a@b.co", Password: "Sup3rSecret"}})
	assert.True(t, errors.Is(err, domain.ErrAdminKeyMissing), "got %v", err)
	assert.False(t, res.Admin)
}
