// Package pgtest opens the integration database for tests that need real Postgres.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Open connects to TEST_DATABASE_URL and applies migrations, or skips the test.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func SeedUser(t *testing.T, db *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users(id, username, name, email, password_hash)
		VALUES ($1, $2, 'Test User', $3, 'x')`, id, "u-"+id[:8], id[:8]+"@example.com")
	require.NoError(t, err)
	return id
}

func SeedSupplier(t *testing.T, db *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO suppliers(id, name, phone, email) VALUES ($1, $2, '0800', $3)`,
		id, "Supplier "+id[:8], id[:8]+"@supplier.test")
	require.NoError(t, err)
	return id
}

func SeedProduct(t *testing.T, db *pgxpool.Pool, name string, price int64, stock int) string {
	t.Helper()
	supplierID := SeedSupplier(t, db)
	id := uuid.NewString()
	_, err := db.Exec(context.Background(), `
		INSERT INTO products(id, supplier_id, name, category, price_cents, stock)
		VALUES ($1, $2, $3, 'test', $4, $5)`, id, supplierID, name, price, stock)
	require.NoError(t, err)
	return id
}

func SeedCartLine(t *testing.T, db *pgxpool.Pool, userID, productID string, qty int, total int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO carts(id, user_id, product_id, qty, total_cents) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, productID, qty, total)
	require.NoError(t, err)
}

func StockOf(t *testing.T, db *pgxpool.Pool, productID string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock))
	return stock
}
