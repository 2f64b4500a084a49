package checkout

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return p.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store     *memstore.Store
	publisher *recordingPublisher
	cart      *cart.Manager
}

func newFixture(t *testing.T, enforceStock bool) (*fixture, *Service) {
	t.Helper()
	store := memstore.New()
	pub := &recordingPublisher{}
	m := cart.NewManager(store, uuid.New(), testLogger())
	require.NoError(t, m.Load(context.Background()))
	return &fixture{store: store, publisher: pub, cart: m}, NewService(store, pub, enforceStock, testLogger())
}

func listOrders(t *testing.T, store *memstore.Store) []domain.Order {
	t.Helper()
	orders, _, err := store.ListOrders(context.Background(), domain.ListParams{})
	require.NoError(t, err)
	return orders
}

func TestCheckoutEmptyCartIsNoop(t *testing.T) {
	f, svc := newFixture(t, false)

	order, err := svc.Checkout(context.Background(), f.cart)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))
	assert.Equal(t, 0, f.store.Calls("InsertOrder"))
	assert.Empty(t, f.publisher.orders)
}

func TestCheckoutWorkedExample(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	a := f.store.MustProduct("A", "10.00", 10)
	b := f.store.MustProduct("B", "5.50", 10)

	_, err := f.cart.Add(ctx, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, b.ID, 1)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, f.cart)
	require.NoError(t, err)
	assert.True(t, dec("25.50").Equal(order.TotalAmount))
	assert.Equal(t, domain.StatusCompleted, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, dec("10.00").Equal(order.Items[0].Price))
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, dec("5.50").Equal(order.Items[1].Price))

	assert.True(t, f.cart.IsEmpty())
	remote, err := f.store.ListCartLines(ctx, f.cart.UserID())
	require.NoError(t, err)
	assert.Empty(t, remote)

	orders := listOrders(t, f.store)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
	require.Len(t, f.publisher.orders, 1)
	assert.Equal(t, order.ID, f.publisher.orders[0].ID)
}

func TestCheckoutWritesOneItemPerLine(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	for _, price := range []string{"1.00", "2.00", "3.00", "4.00"} {
		p := f.store.MustProduct("P"+price, price, 10)
		_, err := f.cart.Add(ctx, p.ID, 1)
		require.NoError(t, err)
	}

	_, err := svc.Checkout(ctx, f.cart)
	require.NoError(t, err)

	orders := listOrders(t, f.store)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 4)
	assert.Equal(t, 1, f.store.Calls("InsertOrder"))
}

func TestCheckoutSnapshotsCartPrices(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	p := f.store.MustProduct("Lamp", "30.00", 10)
	_, err := f.cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)

	newPrice := dec("45.00")
	_, err = f.store.UpdateProduct(ctx, p.ID, domain.ProductUpdate{Price: &newPrice})
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, f.cart)
	require.NoError(t, err)
	assert.True(t, dec("30.00").Equal(order.Items[0].Price), "price comes from the loaded cart line")
}

func TestCheckoutTotalMatchesItemsUnderConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	a := f.store.MustProduct("A", "10.00", 100)
	b := f.store.MustProduct("B", "2.50", 100)
	_, err := f.cart.Add(ctx, a.ID, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, _ = f.cart.Add(ctx, b.ID, 1)
		}
	}()
	order, err := svc.Checkout(ctx, f.cart)
	wg.Wait()
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range order.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sum.Equal(order.TotalAmount), "items sum %s, order total %s", sum, order.TotalAmount)
}

func TestCheckoutPartialItemFailure(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	for _, name := range []string{"A", "B", "C"} {
		p := f.store.MustProduct(name, "1.00", 10)
		_, err := f.cart.Add(ctx, p.ID, 1)
		require.NoError(t, err)
	}
	f.store.FailOrderItemAt(2, errors.New("connection reset"))

	order, err := svc.Checkout(ctx, f.cart)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domain.ErrPartialCheckout), "got %v", err)

	orders := listOrders(t, f.store)
	require.Len(t, orders, 1, "the order row is not compensated")
	assert.Len(t, orders[0].Items, 1)
	assert.Contains(t, err.Error(), orders[0].ID.String())

	assert.Equal(t, 3, f.cart.Count(), "cart is kept after a failed checkout")
	assert.Empty(t, f.publisher.orders)
}

func TestCheckoutOrderInsertFailure(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	p := f.store.MustProduct("A", "1.00", 10)
	_, err := f.cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)

	f.store.FailOn("InsertOrder", errors.New("db down"))
	_, err = svc.Checkout(ctx, f.cart)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrPartialCheckout))
	assert.Equal(t, 0, f.store.Calls("InsertOrderItems"))
	assert.False(t, f.cart.IsEmpty())
}

func TestCheckoutStockPolicy(t *testing.T) {
	ctx := context.Background()

	f, lenient := newFixture(t, false)
	p := f.store.MustProduct("Rare", "9.00", 1)
	_, err := f.cart.Add(ctx, p.ID, 3)
	require.NoError(t, err)
	_, err = lenient.Checkout(ctx, f.cart)
	assert.NoError(t, err, "stock is not checked by default")

	f, strict := newFixture(t, true)
	p = f.store.MustProduct("Rare", "9.00", 1)
	_, err = f.cart.Add(ctx, p.ID, 3)
	require.NoError(t, err)
	_, err = strict.Checkout(ctx, f.cart)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 0, f.store.Calls("InsertOrder"))
}

func TestCheckoutPublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f, svc := newFixture(t, false)
	f.publisher.err = errors.New("broker unavailable")
	p := f.store.MustProduct("A", "1.00", 10)
	_, err := f.cart.Add(ctx, p.ID, 1)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, f.cart)
	require.NoError(t, err)
	assert.NotNil(t, order)
}
