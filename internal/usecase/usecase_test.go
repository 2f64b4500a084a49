package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewProductUseCase(store, store, 12, testLogger())
	missing := uuid.New()

	tests := []struct {
		name    string
		product domain.Product
	}{
		{"empty name", domain.Product{Name: "  ", Price: dec("1.00")}},
		{"negative price", domain.Product{Name: "Mug", Price: dec("-0.01")}},
		{"sub-cent price", domain.Product{Name: "Mug", Price: dec("10.005")}},
		{"price overflows column", domain.Product{Name: "Mug", Price: dec("10000000000")}},
		{"negative stock", domain.Product{Name: "Mug", Price: dec("1.00"), Stock: -1}},
		{"bad image url", domain.Product{Name: "Mug", Price: dec("1.00"), ImageURL: "not a url"}},
		{"unknown category", domain.Product{Name: "Mug", Price: dec("1.00"), CategoryID: &missing}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateProduct(ctx, &tt.product)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, store.Calls("CreateProduct"), "invalid input never reaches the store")

	created, err := uc.CreateProduct(ctx, &domain.Product{Name: " Mug ", Price: dec("9.99"), Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Mug", created.Name)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestUpdateProductPriceScale(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewProductUseCase(store, store, 12, testLogger())
	mug := store.MustProduct("Mug", "9.99", 3)

	bad := dec("10.005")
	_, err := uc.UpdateProduct(ctx, mug.ID, domain.ProductUpdate{Price: &bad})
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
	assert.Equal(t, 0, store.Calls("UpdateProduct"))

	good := dec("10.50")
	updated, err := uc.UpdateProduct(ctx, mug.ID, domain.ProductUpdate{Price: &good})
	require.NoError(t, err)
	assert.True(t, good.Equal(updated.Price))
}

func TestListProductsPagination(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewProductUseCase(store, store, 12, testLogger())
	for i := 0; i < 25; i++ {
		store.MustProduct(fmt.Sprintf("Item %02d", i), "1.00", i%2)
	}

	page, err := uc.ListProducts(ctx, domain.ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 12)

	page, err = uc.ListProducts(ctx, domain.ListParams{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = uc.ListProducts(ctx, domain.ListParams{Page: 1, InStock: true, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, "Item 01", page.Items[0].Name)

	page, err = uc.ListProducts(ctx, domain.ListParams{Search: "item 2"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)

	minPrice, maxPrice := dec("5"), dec("1")
	_, err = uc.ListProducts(ctx, domain.ListParams{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReplaceColors(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewProductUseCase(store, store, 12, testLogger())
	product := store.MustProduct("Shirt", "20.00", 5)

	colors := []domain.ProductColor{
		{Name: "Red", HexCode: "#ff0000",
			Images: []domain.ProductColorImage{{ImageURL: "https://cdn.example.com/red.png"}},
			Sizes:  []domain.ProductColorSize{{Size: "M", Stock: 2}, {Size: "L", Stock: 1}}},
		{Name: "Blue", HexCode: "#0000ff"},
	}
	saved, err := uc.ReplaceColors(ctx, product.ID, colors)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Blue", saved[0].Name)
	assert.Len(t, saved[1].Sizes, 2)
	assert.Len(t, saved[1].Images, 1)

	got, err := uc.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, got.Colors, 2)

	_, err = uc.ReplaceColors(ctx, product.ID, []domain.ProductColor{{Name: "Red"}, {Name: "red"}})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	store.FailOn("InsertColorSizes", errors.New("connection reset"))
	_, err = uc.ReplaceColors(ctx, product.ID, colors)
	assert.True(t, errors.Is(err, domain.ErrPartialProductEdit), "got %v", err)

	left, err := store.ListColors(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, left, 1, "writes before the failure stay in place")
	assert.Equal(t, "Red", left[0].Name)
	assert.Len(t, left[0].Images, 1)
}

func TestUpdateCategoryReassignsProducts(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewCategoryUseCase(store, store, 12, testLogger())

	category, err := uc.CreateCategory(ctx, &domain.Category{Name: "Shoes"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(ctx, &domain.Category{Name: "Shoes"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	a := store.MustProduct("Boot", "50.00", 1)
	b := store.MustProduct("Sandal", "20.00", 1)

	updated, err := uc.UpdateCategory(ctx, &domain.Category{ID: category.ID, Name: "Footwear"}, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, "Footwear", updated.Name)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		p, err := store.GetProductByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, category.ID, *p.CategoryID)
	}

	_, err = uc.UpdateCategory(ctx, &domain.Category{ID: category.ID, Name: ""}, nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestOrderAccessAndTransitions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewOrderUseCase(store, 12, testLogger())

	owner := domain.Profile{ID: uuid.New()}
	stranger := domain.Profile{ID: uuid.New()}
	admin := domain.Profile{ID: uuid.New(), IsAdmin: true}

	order, err := store.InsertOrder(ctx, &domain.Order{UserID: owner.ID, TotalAmount: dec("10.00"), Status: domain.StatusPending})
	require.NoError(t, err)

	_, err = uc.GetOrder(ctx, owner, order.ID)
	assert.NoError(t, err)
	_, err = uc.GetOrder(ctx, admin, order.ID)
	assert.NoError(t, err)
	_, err = uc.GetOrder(ctx, stranger, order.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	page, err := uc.ListUserOrders(ctx, stranger.ID, domain.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	updated, err := uc.UpdateOrderStatus(ctx, order.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	_, err = uc.UpdateOrderStatus(ctx, order.ID, domain.StatusCancelled)
	assert.True(t, errors.Is(err, domain.ErrInvalidStatusTransition))

	_, err = uc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatus("shipped"))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func newAuthUseCase(store *memstore.Store, adminEnabled bool) AuthUseCase {
	return NewAuthUseCase(store, store, auth.NewTokenIssuer("0123456789abcdef-test"), time.Hour, adminEnabled, testLogger())
}

func TestSignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := newAuthUseCase(store, false)

	info, err := uc.SignUp(ctx, " Ada@Example.com ", "Secret123", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", info.Profile.Email)
	assert.False(t, info.Profile.IsAdmin)
	assert.NotEmpty(t, info.Token)

	_, err = uc.SignUp(ctx, "ada@example.com", "Secret123", "")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = uc.SignIn(ctx, "ada@example.com", "wrong-Pass1")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, err = uc.SignIn(ctx, "nobody@example.com", "Secret123")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	signedIn, err := uc.SignIn(ctx, "ADA@example.com", "Secret123")
	require.NoError(t, err)
	require.NotNil(t, signedIn.Profile.LastSignInAt)

	current, err := uc.GetSession(ctx, signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, signedIn.Session.ID, current.Session.ID)
	assert.Equal(t, "Ada", current.Profile.DisplayName)

	require.NoError(t, uc.SignOut(ctx, signedIn.Session.ID))
	_, err = uc.GetSession(ctx, signedIn.Token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.GetSession(ctx, info.Token)
	assert.NoError(t, err, "other sessions stay valid")
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := newAuthUseCase(store, false)

	for _, email := range []string{"not-an-email", "   ", "Ada <ada@example.com>"} {
		_, err := uc.SignUp(ctx, email, "Secret123", "")
		assert.True(t, errors.Is(err, domain.ErrValidation), email)
	}
	_, err := uc.SignUp(ctx, "ada@example.com", "weak", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, 0, store.Calls("CreateUser"))
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()

	disabled := newAuthUseCase(memstore.New(), false)
	_, err := disabled.AdminCreateUser(ctx, "ops@example.com", "Secret123", "Ops", true)
	assert.True(t, errors.Is(err, domain.ErrAdminKeyMissing))
	assert.True(t, errors.Is(disabled.AdminDeleteUser(ctx, uuid.New()), domain.ErrAdminKeyMissing))

	store := memstore.New()
	uc := newAuthUseCase(store, true)
	profile, err := uc.AdminCreateUser(ctx, "ops@example.com", "Secret123", "Ops", true)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)

	info, err := uc.SignIn(ctx, "ops@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, uc.AdminDeleteUser(ctx, profile.ID))
	_, err = store.GetProfileByID(ctx, profile.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "profile cascades with the user")
	_, err = uc.GetSession(ctx, info.Token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestProfileUpdates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	authUC := newAuthUseCase(store, false)
	uc := NewProfileUseCase(store, 12, testLogger())

	info, err := authUC.SignUp(ctx, "bob@example.com", "Secret123", "Bob")
	require.NoError(t, err)

	yes := true
	name := "  Robert "
	updated, err := uc.UpdateOwnProfile(ctx, info.Profile.ID, domain.ProfileUpdate{DisplayName: &name, IsAdmin: &yes})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.DisplayName)
	assert.False(t, updated.IsAdmin, "self-service cannot grant admin")

	updated, err = uc.AdminUpdateProfile(ctx, info.Profile.ID, domain.ProfileUpdate{IsAdmin: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	page, err := uc.ListProfiles(ctx, domain.ListParams{Admin: &yes})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}
