package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var productSort = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"category":  "category",
	"price":     "price_cents",
	"stock":     "stock",
}

const selectProduct = `
	SELECT p.id, p.supplier_id, p.name, p.category, p.description, p.image, p.price_cents, p.stock,
	       p.created_at, p.updated_at, p.deleted_at, s.name
	FROM products p
	JOIN suppliers s ON s.id = p.supplier_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SupplierID, &p.Name, &p.Category, &p.Description, &p.Image, &p.PriceCents,
		&p.Stock, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.Supplier.Name)
	return p, err
}

// ListProducts returns one page of live products.
func (r *Repo) ListProducts(ctx context.Context, page paging.Page) ([]Product, paging.Info, error) {
	return r.listProducts(ctx, page, false)
}

// ListAllProducts is ListProducts including soft-deleted rows.
func (r *Repo) ListAllProducts(ctx context.Context, page paging.Page) ([]Product, paging.Info, error) {
	return r.listProducts(ctx, page, true)
}

func (r *Repo) listProducts(ctx context.Context, page paging.Page, withDeleted bool) ([]Product, paging.Info, error) {
	b := &paging.Builder{}
	if !withDeleted {
		b.Where("p.deleted_at IS NULL")
	}
	if page.Search != "" {
		s := b.Arg(paging.Like(page.Search))
		b.Where("(p.name ILIKE " + s + " OR p.category ILIKE " + s + " OR s.name ILIKE " + s + ")")
	}
	sql, args, err := b.Keyset(selectProduct, "p", "products", page, productSort)
	if err != nil {
		return nil, paging.Info{}, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, paging.Info{}, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, paging.Info{}, err
	}
	items, info := paging.Trim(out, page, func(p Product) string { return p.ID })
	return items, info, nil
}

// GetProduct returns a live product.
func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, ErrProductNotFound
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, selectProduct+` WHERE p.id=$1 AND p.deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *Repo) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if err := r.liveSupplier(ctx, in.SupplierID); err != nil {
		return Product{}, err
	}
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, supplier_id, name, category, description, image, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, in.SupplierID, strings.TrimSpace(in.Name), in.Category, in.Description, in.Image, in.PriceCents, in.Stock)
	if err != nil {
		return Product{}, err
	}
	return r.GetProduct(ctx, id)
}

// UpdateProduct applies patch to a live product under a row lock.
func (r *Repo) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, ErrProductNotFound
	}
	if patch.SupplierID != nil {
		if err := r.liveSupplier(ctx, *patch.SupplierID); err != nil {
			return Product{}, err
		}
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Product
	err = tx.QueryRow(ctx, `
		SELECT supplier_id, name, category, description, image, price_cents, stock
		FROM products WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, id,
	).Scan(&p.SupplierID, &p.Name, &p.Category, &p.Description, &p.Image, &p.PriceCents, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}

	patch.apply(&p)
	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET supplier_id=$2, name=$3, category=$4, description=$5, image=$6, price_cents=$7, stock=$8,
		    updated_at=now()
		WHERE id=$1`,
		id, p.SupplierID, p.Name, p.Category, p.Description, p.Image, p.PriceCents, p.Stock); err != nil {
		return Product{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Product{}, err
	}
	return r.GetProduct(ctx, id)
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}
	return r.softDelete(ctx, "products", id, false, ErrProductNotFound)
}

func (r *Repo) RestoreProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}
	return r.softDelete(ctx, "products", id, true, ErrProductNotFound)
}
