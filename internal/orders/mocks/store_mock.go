package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/google/uuid"
)

var ErrProductMissing = errors.New("product not found")

// MockProduct is the product row kept by MockStore.
type MockProduct struct {
	Name       string
	PriceCents int64
	Stock      int
}

type state struct {
	products map[string]MockProduct
	lines    []orders.CartLine
	orders   []orders.Order
}

func (s state) clone() state {
	c := state{
		products: make(map[string]MockProduct, len(s.products)),
		lines:    append([]orders.CartLine(nil), s.lines...),
		orders:   append([]orders.Order(nil), s.orders...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

// MockStore is an in-memory orders.Store. RunInTx holds one lock for the whole unit of work and
// works on a copy of the state, so failed units leave nothing behind and concurrent units run
// one after another.
type MockStore struct {
	mu    sync.Mutex
	state state

	// FailOn makes the named Tx operation return the given error.
	FailOn map[string]error

	TxCalls     int
	CommitCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{
		state:  state{products: make(map[string]MockProduct)},
		FailOn: make(map[string]error),
	}
}

func (m *MockStore) AddProduct(id, name string, priceCents int64, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.products[id] = MockProduct{Name: name, PriceCents: priceCents, Stock: stock}
}

// AddCartLine adds a line priced from the stored product.
func (m *MockStore) AddCartLine(userID, productID string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.state.products[productID]
	m.state.lines = append(m.state.lines, orders.CartLine{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProductID:  productID,
		Qty:        qty,
		TotalCents: p.PriceCents * int64(qty),
	})
}

func (m *MockStore) Stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[productID].Stock
}

func (m *MockStore) CartLines(userID string) []orders.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orders.CartLine
	for _, l := range m.state.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (m *MockStore) Orders() []orders.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]orders.Order(nil), m.state.orders...)
}

func (m *MockStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxCalls++

	if err := ctx.Err(); err != nil {
		return &orders.TransactionError{Op: "begin", Err: err}
	}
	work := m.state.clone()
	if err := fn(ctx, &memTx{s: &work, failOn: m.FailOn}); err != nil {
		return err
	}
	if err := m.FailOn["Commit"]; err != nil {
		return &orders.TransactionError{Op: "commit", Err: err}
	}
	m.state = work
	m.CommitCalls++
	return nil
}

type memTx struct {
	s      *state
	failOn map[string]error
}

func (t *memTx) fail(op string) error { return t.failOn[op] }

func (t *memTx) ListCartLines(ctx context.Context, userID string) ([]orders.CartLine, error) {
	if err := t.fail("ListCartLines"); err != nil {
		return nil, err
	}
	var out []orders.CartLine
	for _, l := range t.s.lines {
		if l.UserID != userID {
			continue
		}
		p := t.s.products[l.ProductID]
		l.Product = orders.ProductSnapshot{Name: p.Name, PriceCents: p.PriceCents, Stock: p.Stock}
		out = append(out, l)
	}
	return out, nil
}

func (t *memTx) ProductStock(ctx context.Context, productID string) (int, error) {
	if err := t.fail("ProductStock"); err != nil {
		return 0, err
	}
	p, ok := t.s.products[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrProductMissing, productID)
	}
	return p.Stock, nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	if err := t.fail("DecrementStock"); err != nil {
		return err
	}
	p, ok := t.s.products[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductMissing, productID)
	}
	if p.Stock < qty {
		return orders.ErrStockUnderflow
	}
	p.Stock -= qty
	t.s.products[productID] = p
	return nil
}

func (t *memTx) CreateOrder(ctx context.Context, n orders.NewOrder) (orders.Order, error) {
	if err := t.fail("CreateOrder"); err != nil {
		return orders.Order{}, err
	}
	now := time.Now().UTC()
	o := orders.Order{
		ID:         uuid.NewString(),
		UserID:     n.UserID,
		ProductID:  n.ProductID,
		Qty:        n.Qty,
		TotalCents: n.TotalCents,
		Status:     n.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.s.orders = append(t.s.orders, o)
	return o, nil
}

func (t *memTx) DeleteCartLines(ctx context.Context, userID string) error {
	if err := t.fail("DeleteCartLines"); err != nil {
		return err
	}
	kept := t.s.lines[:0:0]
	for _, l := range t.s.lines {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	t.s.lines = kept
	return nil
}
