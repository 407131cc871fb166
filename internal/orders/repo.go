package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed Store plus the order reads and status updates around it.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	return nil
}

type pgTx struct{ tx pgx.Tx }

// ListCartLines locks the cart rows so a second checkout of the same cart waits and then sees
// it empty. Ordering by product id keeps the later product locks in a consistent order.
func (t *pgTx) ListCartLines(ctx context.Context, userID string) ([]CartLine, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.qty, c.total_cents, p.name, p.price_cents, p.stock
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id, c.id
		FOR UPDATE OF c`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Qty, &l.TotalCents,
			&l.Product.Name, &l.Product.PriceCents, &l.Product.Stock); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *pgTx) ProductStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := t.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock)
	return stock, err
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrStockUnderflow
	}
	return nil
}

func (t *pgTx) CreateOrder(ctx context.Context, n NewOrder) (Order, error) {
	o := Order{
		ID:         uuid.NewString(),
		UserID:     n.UserID,
		ProductID:  n.ProductID,
		Qty:        n.Qty,
		TotalCents: n.TotalCents,
		Status:     n.Status,
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, product_id, qty, total_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ProductID, o.Qty, o.TotalCents, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (t *pgTx) DeleteCartLines(ctx context.Context, userID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}

const selectOrderView = `
	SELECT o.id, o.user_id, o.product_id, o.qty, o.total_cents, o.status, o.created_at, o.updated_at,
	       p.name, p.image, p.price_cents
	FROM orders o
	JOIN products p ON p.id = o.product_id`

func scanOrderView(row pgx.Row) (OrderView, error) {
	var v OrderView
	var status string
	err := row.Scan(&v.ID, &v.UserID, &v.ProductID, &v.Qty, &v.TotalCents, &status, &v.CreatedAt, &v.UpdatedAt,
		&v.Product.Name, &v.Product.Image, &v.Product.PriceCents)
	v.Status = Status(status)
	return v, err
}

func (r *Repo) queryViews(ctx context.Context, sql string, args ...any) ([]OrderView, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderView{}
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]OrderView, error) {
	return r.queryViews(ctx, selectOrderView+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *Repo) List(ctx context.Context) ([]OrderView, error) {
	return r.queryViews(ctx, selectOrderView+` ORDER BY o.created_at DESC`)
}

func (r *Repo) Get(ctx context.Context, id string) (OrderView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return OrderView{}, ErrOrderNotFound
	}
	v, err := scanOrderView(r.DB.QueryRow(ctx, selectOrderView+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderView{}, ErrOrderNotFound
	}
	return v, err
}

// UpdateStatus moves an order along the status machine. A non-empty ownerID restricts the
// change to that user's orders.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status, ownerID string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrOrderNotFound
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	var status string
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, product_id, qty, total_cents, status, created_at
		FROM orders WHERE id=$1 FOR UPDATE`, id,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &o.Qty, &o.TotalCents, &status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if ownerID != "" && o.UserID != ownerID {
		return Order{}, ErrNotOwner
	}
	if !CanTransition(Status(status), to) {
		return Order{}, &TransitionError{From: Status(status), To: to}
	}

	if err := tx.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		id, string(to)).Scan(&o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	o.Status = to
	return o, nil
}

// Cancel lets a customer cancel one of their own orders.
func (r *Repo) Cancel(ctx context.Context, id, userID string) (Order, error) {
	return r.UpdateStatus(ctx, id, StatusCancelled, userID)
}
