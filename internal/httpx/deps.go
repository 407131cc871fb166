package httpx

import (
	"context"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/users"
	kafkago "github.com/segmentio/kafka-go"
)

type UserStore interface {
	Create(ctx context.Context, n users.NewUser) (users.User, error)
	FindByLogin(ctx context.Context, login string) (users.User, error)
	Get(ctx context.Context, id string) (users.User, error)
	List(ctx context.Context, page paging.Page) ([]users.User, paging.Info, error)
	ListAll(ctx context.Context, page paging.Page) ([]users.User, paging.Info, error)
	Update(ctx context.Context, id string, p users.Patch) (users.User, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type CatalogStore interface {
	ListProducts(ctx context.Context, page paging.Page) ([]catalog.Product, paging.Info, error)
	ListAllProducts(ctx context.Context, page paging.Page) ([]catalog.Product, paging.Info, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, p catalog.ProductPatch) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	RestoreProduct(ctx context.Context, id string) error

	ListSuppliers(ctx context.Context, page paging.Page) ([]catalog.Supplier, paging.Info, error)
	ListAllSuppliers(ctx context.Context, page paging.Page) ([]catalog.Supplier, paging.Info, error)
	GetSupplier(ctx context.Context, id string) (catalog.Supplier, error)
	CreateSupplier(ctx context.Context, in catalog.SupplierInput) (catalog.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, p catalog.SupplierPatch) (catalog.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	RestoreSupplier(ctx context.Context, id string) error
}

type CartStore interface {
	Upsert(ctx context.Context, userID, productID string, delta int) (cart.Line, bool, error)
	List(ctx context.Context, userID string) ([]cart.Line, error)
	Delete(ctx context.Context, userID, lineID string) error
}

type OrderStore interface {
	ListByUser(ctx context.Context, userID string) ([]orders.OrderView, error)
	List(ctx context.Context) ([]orders.OrderView, error)
	Get(ctx context.Context, id string) (orders.OrderView, error)
	UpdateStatus(ctx context.Context, id string, to orders.Status, ownerID string) (orders.Order, error)
	Cancel(ctx context.Context, id, userID string) (orders.Order, error)
}

type Checkouter interface {
	Checkout(ctx context.Context, userID string) (orders.Result, error)
}

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

type LoginLimiter interface {
	Allow(ctx context.Context, id string) (bool, time.Duration, error)
}

type SalesCounter interface {
	Sold(ctx context.Context, productID string) (int64, error)
}
