package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var supplierSort = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"email":     "email",
}

const selectSupplier = `
	SELECT s.id, s.name, s.phone, s.email, s.address, s.created_at, s.updated_at, s.deleted_at
	FROM suppliers s`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.Address, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	return s, err
}

func (r *Repo) ListSuppliers(ctx context.Context, page paging.Page) ([]Supplier, paging.Info, error) {
	return r.listSuppliers(ctx, page, false)
}

func (r *Repo) ListAllSuppliers(ctx context.Context, page paging.Page) ([]Supplier, paging.Info, error) {
	return r.listSuppliers(ctx, page, true)
}

func (r *Repo) listSuppliers(ctx context.Context, page paging.Page, withDeleted bool) ([]Supplier, paging.Info, error) {
	b := &paging.Builder{}
	if !withDeleted {
		b.Where("s.deleted_at IS NULL")
	}
	if page.Search != "" {
		q := b.Arg(paging.Like(page.Search))
		b.Where("(s.name ILIKE " + q + " OR s.phone ILIKE " + q + " OR s.email ILIKE " + q + ")")
	}
	sql, args, err := b.Keyset(selectSupplier, "s", "suppliers", page, supplierSort)
	if err != nil {
		return nil, paging.Info{}, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer rows.Close()

	out := []Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, paging.Info{}, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, paging.Info{}, err
	}
	items, info := paging.Trim(out, page, func(s Supplier) string { return s.ID })
	return items, info, nil
}

func (r *Repo) GetSupplier(ctx context.Context, id string) (Supplier, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Supplier{}, ErrSupplierNotFound
	}
	s, err := scanSupplier(r.DB.QueryRow(ctx, selectSupplier+` WHERE s.id=$1 AND s.deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrSupplierNotFound
	}
	return s, err
}

func (r *Repo) liveSupplier(ctx context.Context, id string) error {
	_, err := r.GetSupplier(ctx, id)
	return err
}

// supplierUnique maps the live-row unique indexes to their domain errors. They back
// checkSupplierUnique when two writers race past it.
func supplierUnique(err error) error {
	constraint, ok := postgres.UniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "suppliers_name_live":
		return ErrDuplicateName
	case "suppliers_email_live":
		return ErrDuplicateEmail
	}
	return err
}

// checkSupplierUnique rejects a name or email already used by another live supplier.
func (r *Repo) checkSupplierUnique(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, selfID, name, email string) error {
	var sameName, sameEmail bool
	err := q.QueryRow(ctx, `
		SELECT
		  EXISTS (SELECT 1 FROM suppliers WHERE lower(name)=lower($2) AND id<>$1 AND deleted_at IS NULL),
		  EXISTS (SELECT 1 FROM suppliers WHERE lower(email)=lower($3) AND id<>$1 AND deleted_at IS NULL)`,
		selfID, name, email).Scan(&sameName, &sameEmail)
	switch {
	case err != nil:
		return err
	case sameName:
		return ErrDuplicateName
	case sameEmail:
		return ErrDuplicateEmail
	}
	return nil
}

func (r *Repo) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	id := uuid.NewString()
	name := strings.TrimSpace(in.Name)
	if err := r.checkSupplierUnique(ctx, r.DB, id, name, in.Email); err != nil {
		return Supplier{}, err
	}
	s, err := scanSupplier(r.DB.QueryRow(ctx, `
		INSERT INTO suppliers(id, name, phone, email, address) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, phone, email, address, created_at, updated_at, deleted_at`,
		id, name, in.Phone, in.Email, in.Address))
	if err != nil {
		return Supplier{}, supplierUnique(err)
	}
	return s, nil
}

func (r *Repo) UpdateSupplier(ctx context.Context, id string, patch SupplierPatch) (Supplier, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Supplier{}, ErrSupplierNotFound
	}
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return Supplier{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s, err := scanSupplier(tx.QueryRow(ctx, selectSupplier+` WHERE s.id=$1 AND s.deleted_at IS NULL FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrSupplierNotFound
	}
	if err != nil {
		return Supplier{}, err
	}

	patch.apply(&s)
	if err := r.checkSupplierUnique(ctx, tx, id, s.Name, s.Email); err != nil {
		return Supplier{}, err
	}
	s, err = scanSupplier(tx.QueryRow(ctx, `
		UPDATE suppliers SET name=$2, phone=$3, email=$4, address=$5, updated_at=now() WHERE id=$1
		RETURNING id, name, phone, email, address, created_at, updated_at, deleted_at`,
		id, s.Name, s.Phone, s.Email, s.Address))
	if err != nil {
		return Supplier{}, supplierUnique(err)
	}
	return s, tx.Commit(ctx)
}

func (r *Repo) DeleteSupplier(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSupplierNotFound
	}
	return r.softDelete(ctx, "suppliers", id, false, ErrSupplierNotFound)
}

func (r *Repo) RestoreSupplier(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrSupplierNotFound
	}
	return supplierUnique(r.softDelete(ctx, "suppliers", id, true, ErrSupplierNotFound))
}
