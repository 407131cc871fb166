// Package catalog stores products and their suppliers. Both are soft deleted: a deleted row keeps
// its id so carts and orders that reference it still resolve, and it can be restored.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// softDelete marks a live row deleted, or restores a deleted one when restore is set.
func (r *Repo) softDelete(ctx context.Context, table, id string, restore bool, notFound error) error {
	set, state := "now()", "deleted_at IS NULL"
	if restore {
		set, state = "NULL", "deleted_at IS NOT NULL"
	}
	ct, err := r.DB.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at=%s, updated_at=now() WHERE id=$1 AND %s`, table, set, state), id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Nothing changed: either the row is missing or it is already in the target state.
	var deleted bool
	err = r.DB.QueryRow(ctx,
		fmt.Sprintf(`SELECT deleted_at IS NOT NULL FROM %s WHERE id=$1`, table), id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return err
	}
	if restore {
		return ErrNotDeleted
	}
	// Deleting a deleted row reads as not found, like every other live-only lookup.
	return notFound
}
