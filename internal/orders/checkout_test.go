package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/orders/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*orders.Service, *mocks.MockStore) {
	store := mocks.NewMockStore()
	return &orders.Service{Store: store}, store
}

func TestCheckout_SingleLine(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 1500, 10)
	store.AddCartLine("user-1", "prod-a", 3)

	res, err := svc.Checkout(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, 3, res.Orders[0].Qty)
	assert.Equal(t, orders.StatusPending, res.Orders[0].Status)
	assert.Equal(t, "user-1", res.Orders[0].UserID)
	assert.Equal(t, "prod-a", res.Orders[0].ProductID)
	assert.Equal(t, int64(3*1500), res.TotalAmount)
	assert.Equal(t, 7, store.Stock("prod-a"))
	assert.Empty(t, store.CartLines("user-1"))
}

func TestCheckout_OutOfStock(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-b", "Product B", 999, 0)
	store.AddCartLine("user-1", "prod-b", 1)

	res, err := svc.Checkout(context.Background(), "user-1")

	var stockErr *orders.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Product B", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)
	assert.Empty(t, res.Orders)
	assert.Equal(t, 0, store.Stock("prod-b"))
	assert.Empty(t, store.Orders())
	assert.Len(t, store.CartLines("user-1"), 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 1500, 10)
	store.AddCartLine("someone-else", "prod-a", 1)

	_, err := svc.Checkout(context.Background(), "user-1")

	assert.ErrorIs(t, err, orders.ErrEmptyCart)
	assert.Equal(t, 0, store.CommitCalls)
	assert.Equal(t, 10, store.Stock("prod-a"))
}

func TestCheckout_AtomicWhenLaterLineFails(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 100, 10)
	store.AddProduct("prod-b", "Product B", 200, 1)
	store.AddProduct("prod-c", "Product C", 300, 10)
	store.AddCartLine("user-1", "prod-a", 2)
	store.AddCartLine("user-1", "prod-b", 5)
	store.AddCartLine("user-1", "prod-c", 1)
	before := store.CartLines("user-1")

	_, err := svc.Checkout(context.Background(), "user-1")

	var stockErr *orders.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-b", stockErr.ProductID)
	assert.Equal(t, 10, store.Stock("prod-a"))
	assert.Equal(t, 1, store.Stock("prod-b"))
	assert.Equal(t, 10, store.Stock("prod-c"))
	assert.Empty(t, store.Orders())
	assert.Equal(t, before, store.CartLines("user-1"))
}

func TestCheckout_ConservesQuantities(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 100, 50)
	store.AddProduct("prod-b", "Product B", 250, 50)
	store.AddCartLine("user-1", "prod-a", 4)
	store.AddCartLine("user-1", "prod-b", 7)
	store.AddCartLine("user-2", "prod-a", 1)

	res, err := svc.Checkout(context.Background(), "user-1")
	require.NoError(t, err)

	qtyByProduct := map[string]int{}
	var sum int64
	for _, o := range res.Orders {
		qtyByProduct[o.ProductID] += o.Qty
		sum += o.TotalCents
	}
	assert.Equal(t, map[string]int{"prod-a": 4, "prod-b": 7}, qtyByProduct)
	assert.Equal(t, int64(4*100+7*250), res.TotalAmount)
	assert.Equal(t, sum, res.TotalAmount)
	assert.Equal(t, 46, store.Stock("prod-a"))
	assert.Equal(t, 43, store.Stock("prod-b"))
	assert.Empty(t, store.CartLines("user-1"))
	assert.Len(t, store.CartLines("user-2"), 1, "other carts are untouched")
}

func TestCheckout_StoreFailuresRollBack(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name string
		op   string
	}{
		{"list cart lines", "ListCartLines"},
		{"read stock", "ProductStock"},
		{"create order", "CreateOrder"},
		{"decrement stock", "DecrementStock"},
		{"clear cart", "DeleteCartLines"},
		{"commit", "Commit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService()
			store.AddProduct("prod-a", "Product A", 100, 10)
			store.AddCartLine("user-1", "prod-a", 2)
			store.FailOn[tt.op] = boom

			_, err := svc.Checkout(context.Background(), "user-1")

			var txErr *orders.TransactionError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, tt.name, txErr.Op)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, 10, store.Stock("prod-a"))
			assert.Empty(t, store.Orders())
			assert.Len(t, store.CartLines("user-1"), 1)
		})
	}
}

func TestCheckout_CancelledContext(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 100, 10)
	store.AddCartLine("user-1", "prod-a", 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Checkout(ctx, "user-1")

	var txErr *orders.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "begin", txErr.Op)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, store.Stock("prod-a"))
}

type failingStore struct{ err error }

func (s failingStore) RunInTx(context.Context, func(context.Context, orders.Tx) error) error {
	return s.err
}

func TestCheckout_UnlabelledStoreError(t *testing.T) {
	boom := errors.New("pool closed")
	svc := &orders.Service{Store: failingStore{err: boom}}

	_, err := svc.Checkout(context.Background(), "user-1")

	var txErr *orders.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "transaction", txErr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestCheckout_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 100, 5)
	store.AddCartLine("user-1", "prod-a", 5)
	store.AddCartLine("user-2", "prod-a", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"user-1", "user-2"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), user)
		}(i, user)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var stockErr *orders.InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &stockErr):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, store.Stock("prod-a"))
	assert.Len(t, store.Orders(), 1)
}

func TestCheckout_SameCartTwice(t *testing.T) {
	svc, store := newTestService()
	store.AddProduct("prod-a", "Product A", 100, 10)
	store.AddCartLine("user-1", "prod-a", 2)

	_, err := svc.Checkout(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), "user-1")
	assert.ErrorIs(t, err, orders.ErrEmptyCart)
	assert.Equal(t, 8, store.Stock("prod-a"))
	assert.Len(t, store.Orders(), 1)
}
