package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/migrations"
	"storefront/pkg/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a real Postgres when DATABASE_URL is set. They
// migrate the schema and only touch rows they create.

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL is not set")
	}
	conn, err := db.Connect(context.Background(), url, db.Options{Driver: strings.ToLower(os.Getenv("DB_DRIVER"))})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Up(conn.DB, testLogger()))
	return conn
}

func createTestUser(t *testing.T, conn *sqlx.DB) uuid.UUID {
	t.Helper()
	repo := NewPostgresAuthRepository(conn, testLogger())
	user, err := repo.CreateUser(context.Background(), &domain.AuthUser{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.DeleteUser(context.Background(), user.ID) })
	return user.ID
}

func createTestProduct(t *testing.T, repo domain.ProductRepository, price string) *domain.Product {
	t.Helper()
	p, err := repo.CreateProduct(context.Background(), &domain.Product{
		Name:  "Product " + uuid.NewString(),
		Price: decimal.RequireFromString(price),
		Stock: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.DeleteProduct(context.Background(), p.ID) })
	return p
}

func TestPostgresCartUpsert(t *testing.T) {
	ctx := context.Background()
	conn := openPostgres(t)
	userID := createTestUser(t, conn)
	products := NewPostgresProductRepository(conn, testLogger())
	mug := createTestProduct(t, products, "4.25")
	carts := NewPostgresCartRepository(conn, testLogger())

	first, err := carts.AddCartItem(ctx, userID, mug.ID, 2)
	require.NoError(t, err)
	second, err := carts.AddCartItem(ctx, userID, mug.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, mug.ID, second.Product.ID)
	assert.Equal(t, mug.Name, second.Product.Name)
	assert.True(t, decimal.RequireFromString("4.25").Equal(second.Product.Price))

	lines, err := carts.ListCartLines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, mug.Name, lines[0].Product.Name)
	assert.True(t, decimal.RequireFromString("21.25").Equal(lines[0].Subtotal()))

	_, err = carts.AddCartItem(ctx, userID, uuid.New(), 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	require.NoError(t, carts.UpdateCartItemQuantity(ctx, userID, first.ID, 1))
	assert.True(t, errors.Is(carts.UpdateCartItemQuantity(ctx, userID, first.ID, 0), domain.ErrValidation))
	assert.True(t, errors.Is(carts.DeleteCartItem(ctx, userID, uuid.New()), domain.ErrCartItemNotFound))
	assert.True(t, errors.Is(carts.DeleteCartItem(ctx, uuid.New(), first.ID), domain.ErrCartItemNotFound),
		"another user cannot delete the row")

	require.NoError(t, carts.ClearCart(ctx, userID))
	lines, err = carts.ListCartLines(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPostgresOrderItemsBulkLoad(t *testing.T) {
	ctx := context.Background()
	conn := openPostgres(t)
	orders := NewPostgresOrderRepository(conn, testLogger())
	userID := uuid.New()
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `DELETE FROM orders WHERE user_id = $1`, userID)
	})

	placed := make([]uuid.UUID, 0, 2)
	for _, n := range []int{1, 2} {
		order, err := orders.InsertOrder(ctx, &domain.Order{
			UserID:      userID,
			TotalAmount: decimal.NewFromInt(int64(10 * n)),
			Status:      domain.StatusCompleted,
		})
		require.NoError(t, err)
		items := make([]domain.OrderItem, n)
		for i := range items {
			items[i] = domain.OrderItem{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(10)}
		}
		inserted, err := orders.InsertOrderItems(ctx, order.ID, items)
		require.NoError(t, err)
		assert.Len(t, inserted, n)
		placed = append(placed, order.ID)
	}

	list, total, err := orders.ListOrders(ctx, domain.ListParams{UserID: &userID, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	counts := map[uuid.UUID]int{}
	for _, o := range list {
		counts[o.ID] = len(o.Items)
	}
	assert.Equal(t, map[uuid.UUID]int{placed[0]: 1, placed[1]: 2}, counts)

	got, err := orders.GetOrderByID(ctx, placed[1])
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, decimal.NewFromInt(20).Equal(got.TotalAmount))

	_, err = orders.GetOrderByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgresAssignCategoryAndColors(t *testing.T) {
	ctx := context.Background()
	conn := openPostgres(t)
	products := NewPostgresProductRepository(conn, testLogger())
	categories := NewPostgresCategoryRepository(conn, testLogger())

	category, err := categories.CreateCategory(ctx, &domain.Category{Name: "Category " + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = categories.DeleteCategory(context.Background(), category.ID) })

	a := createTestProduct(t, products, "1.00")
	b := createTestProduct(t, products, "2.00")
	n, err := products.AssignCategory(ctx, []uuid.UUID{a.ID, b.ID}, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	listed, total, err := products.ListProducts(ctx, domain.ListParams{CategoryID: &category.ID, PageSize: 10, Sort: "price"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, listed, 2)
	assert.Equal(t, a.ID, listed[0].ID)

	color, err := products.InsertColor(ctx, &domain.ProductColor{ProductID: a.ID, Name: "Red", HexCode: "#ff0000"})
	require.NoError(t, err)
	require.NoError(t, products.InsertColorImages(ctx, color.ID, []domain.ProductColorImage{
		{ImageURL: "https://cdn.example.com/a.jpg", Position: 0},
	}))
	require.NoError(t, products.InsertColorSizes(ctx, color.ID, []domain.ProductColorSize{
		{Size: "S", Stock: 1}, {Size: "M", Stock: 2},
	}))
	colors, err := products.ListColors(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Len(t, colors[0].Images, 1)
	assert.Len(t, colors[0].Sizes, 2)
}

func TestPostgresPriceOverflowIsInvalid(t *testing.T) {
	conn := openPostgres(t)
	products := NewPostgresProductRepository(conn, testLogger())

	_, err := products.CreateProduct(context.Background(), &domain.Product{
		Name:  "Product " + uuid.NewString(),
		Price: decimal.RequireFromString("10000000000"),
	})
	assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
}
