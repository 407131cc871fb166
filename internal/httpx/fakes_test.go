package httpx

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/users"
	kafkago "github.com/segmentio/kafka-go"
)

// fakeUsers keeps users in memory; methods the tests never reach panic through the nil interface.
type fakeUsers struct {
	UserStore
	mu    sync.Mutex
	byID  map[string]users.User
	added int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]users.User{}} }

func (f *fakeUsers) add(u users.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUsers) Create(_ context.Context, n users.NewUser) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == n.Username {
			return users.User{}, users.ErrDuplicateUsername
		}
		if u.Email == n.Email {
			return users.User{}, users.ErrDuplicateEmail
		}
	}
	f.added++
	u := users.User{ID: "new-user", Username: n.Username, Name: n.Name, Email: n.Email, Role: n.Role, PasswordHash: n.PasswordHash}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return users.User{}, users.ErrUserNotFound
}

func (f *fakeUsers) Get(_ context.Context, id string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return u, nil
}

type fakeCatalog struct {
	CatalogStore
	products map[string]catalog.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context, page paging.Page) ([]catalog.Product, paging.Info, error) {
	if page.Cursor == "bad" {
		return nil, paging.Info{}, paging.ErrBadCursor
	}
	out := []catalog.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, paging.Info{}, nil
}

type fakeOrders struct {
	OrderStore
	mu    sync.Mutex
	views map[string]orders.OrderView
	gets  int
}

func (f *fakeOrders) Get(_ context.Context, id string) (orders.OrderView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.views[id]
	if !ok {
		return orders.OrderView{}, orders.ErrOrderNotFound
	}
	return v, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, to orders.Status, ownerID string) (orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.views[id]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if ownerID != "" && v.UserID != ownerID {
		return orders.Order{}, orders.ErrNotOwner
	}
	if !orders.CanTransition(v.Status, to) {
		return orders.Order{}, &orders.TransitionError{From: v.Status, To: to}
	}
	v.Status = to
	f.views[id] = v
	return v.Order, nil
}

func (f *fakeOrders) Cancel(ctx context.Context, id, userID string) (orders.Order, error) {
	return f.UpdateStatus(ctx, id, orders.StatusCancelled, userID)
}

type published struct {
	Topic string
	Key   string
	Value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{Topic: topic, Key: string(key), Value: value})
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

// fakeLimiter allows the first limit attempts per id.
type fakeLimiter struct {
	mu    sync.Mutex
	limit int
	hits  map[string]int
}

func (l *fakeLimiter) Allow(_ context.Context, id string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits = map[string]int{}
	}
	l.hits[id]++
	return l.hits[id] <= l.limit, 30 * time.Second, nil
}

type fakeSales map[string]int64

func (f fakeSales) Sold(_ context.Context, productID string) (int64, error) { return f[productID], nil }
