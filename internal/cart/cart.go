// Package cart keeps each user's pending purchase intent: at most one line per product, whose
// total is the product's current price times the quantity.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrInvalidQty   = errors.New("quantity must be positive for a new cart line")
)

type Line struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId"`
	Qty        int       `json:"qty"`
	TotalCents int64     `json:"total"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Product    struct {
		Name       string `json:"name"`
		Image      string `json:"image"`
		PriceCents int64  `json:"price"`
	} `json:"product"`
}

type Repo struct{ DB *pgxpool.Pool }

const selectLine = `
	SELECT c.id, c.user_id, c.product_id, c.qty, c.total_cents, c.created_at, c.updated_at,
	       p.name, p.image, p.price_cents
	FROM carts c
	JOIN products p ON p.id = c.product_id`

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Qty, &l.TotalCents, &l.CreatedAt, &l.UpdatedAt,
		&l.Product.Name, &l.Product.Image, &l.Product.PriceCents)
	return l, err
}

// Upsert adds delta to the user's line for productID, creating it when absent. A resulting
// quantity of zero or less removes the line and reports removed.
func (r *Repo) Upsert(ctx context.Context, userID, productID string, delta int) (line Line, removed bool, err error) {
	if _, err := uuid.Parse(productID); err != nil {
		return Line{}, false, catalog.ErrProductNotFound
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return Line{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Cart row before product row, the same order checkout takes them in.
	var id string
	var qty int
	lineErr := tx.QueryRow(ctx, `
		SELECT id, qty FROM carts WHERE user_id=$1 AND product_id=$2 FOR UPDATE`, userID, productID,
	).Scan(&id, &qty)
	if lineErr != nil && !errors.Is(lineErr, pgx.ErrNoRows) {
		return Line{}, false, lineErr
	}

	var price int64
	err = tx.QueryRow(ctx, `
		SELECT price_cents FROM products WHERE id=$1 AND deleted_at IS NULL FOR SHARE`, productID,
	).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, false, catalog.ErrProductNotFound
	}
	if err != nil {
		return Line{}, false, err
	}

	switch {
	case errors.Is(lineErr, pgx.ErrNoRows):
		if delta <= 0 {
			return Line{}, false, ErrInvalidQty
		}
		// A concurrent first add for the same product lands on the conflict branch.
		_, err = tx.Exec(ctx, `
			INSERT INTO carts(id, user_id, product_id, qty, total_cents) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, product_id) DO UPDATE
			SET qty = carts.qty + EXCLUDED.qty, total_cents = (carts.qty + EXCLUDED.qty) * $6::bigint, updated_at = now()`,
			uuid.NewString(), userID, productID, delta, int64(delta)*price, price)
	case qty+delta <= 0:
		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id); err != nil {
			return Line{}, false, err
		}
		return Line{}, true, tx.Commit(ctx)
	default:
		_, err = tx.Exec(ctx, `
			UPDATE carts SET qty=$2, total_cents=$3, updated_at=now() WHERE id=$1`,
			id, qty+delta, int64(qty+delta)*price)
	}
	if err != nil {
		return Line{}, false, err
	}

	line, err = scanLine(tx.QueryRow(ctx, selectLine+` WHERE c.user_id=$1 AND c.product_id=$2`, userID, productID))
	if err != nil {
		return Line{}, false, err
	}
	return line, false, tx.Commit(ctx)
}

func (r *Repo) List(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, selectLine+` WHERE c.user_id=$1 ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Delete removes one of the user's own lines.
func (r *Repo) Delete(ctx context.Context, userID, lineID string) error {
	if _, err := uuid.Parse(lineID); err != nil {
		return ErrLineNotFound
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE id=$1 AND user_id=$2`, lineID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}
