// Package users stores accounts. Usernames and emails are unique among live users only, so a
// soft-deleted account frees them.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNotDeleted        = errors.New("user is not deleted")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Address      string     `json:"address"`
	Profile      string     `json:"profile"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

type NewUser struct {
	Username     string
	Name         string
	Email        string
	Address      string
	Profile      string
	Role         string
	PasswordHash string
}

// Patch updates the caller's own profile; nil fields are left alone.
type Patch struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Name     *string `json:"name" validate:"omitempty,min=3,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	Profile  *string `json:"profile" validate:"omitempty,max=255"`
}

type Repo struct{ DB *pgxpool.Pool }

var userSort = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"username":  "username",
	"email":     "email",
}

const selectUser = `
	SELECT u.id, u.username, u.name, u.email, u.address, u.profile, u.role, u.password_hash,
	       u.created_at, u.updated_at, u.deleted_at
	FROM users u`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Address, &u.Profile, &u.Role, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return u, err
}

// uniqueViolation maps the partial unique indexes to their domain errors.
func uniqueViolation(err error) error {
	constraint, ok := postgres.UniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "users_username_live":
		return ErrDuplicateUsername
	case "users_email_live":
		return ErrDuplicateEmail
	}
	return err
}

func (r *Repo) Create(ctx context.Context, n NewUser) (User, error) {
	role := n.Role
	if role == "" {
		role = "customer"
	}
	u, err := scanUser(r.DB.QueryRow(ctx, `
		INSERT INTO users(id, username, name, email, address, profile, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, username, name, email, address, profile, role, password_hash, created_at, updated_at, deleted_at`,
		uuid.NewString(), strings.TrimSpace(n.Username), strings.TrimSpace(n.Name), strings.ToLower(n.Email),
		n.Address, n.Profile, role, n.PasswordHash))
	if err != nil {
		return User{}, uniqueViolation(err)
	}
	return u, nil
}

// FindByLogin looks a live user up by email or username.
func (r *Repo) FindByLogin(ctx context.Context, login string) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, selectUser+`
		WHERE (u.email = lower($1) OR u.username = $1) AND u.deleted_at IS NULL
		LIMIT 1`, strings.TrimSpace(login)))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrUserNotFound
	}
	u, err := scanUser(r.DB.QueryRow(ctx, selectUser+` WHERE u.id=$1 AND u.deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *Repo) List(ctx context.Context, page paging.Page) ([]User, paging.Info, error) {
	return r.list(ctx, page, false)
}

func (r *Repo) ListAll(ctx context.Context, page paging.Page) ([]User, paging.Info, error) {
	return r.list(ctx, page, true)
}

func (r *Repo) list(ctx context.Context, page paging.Page, withDeleted bool) ([]User, paging.Info, error) {
	b := &paging.Builder{}
	if !withDeleted {
		b.Where("u.deleted_at IS NULL")
	}
	if page.Search != "" {
		s := b.Arg(paging.Like(page.Search))
		b.Where("(u.name ILIKE " + s + " OR u.email ILIKE " + s + " OR u.role ILIKE " + s + ")")
	}
	sql, args, err := b.Keyset(selectUser, "u", "users", page, userSort)
	if err != nil {
		return nil, paging.Info{}, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, paging.Info{}, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, paging.Info{}, err
	}
	items, info := paging.Trim(out, page, func(u User) string { return u.ID })
	return items, info, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (User, error) {
	if p.Email != nil {
		lower := strings.ToLower(*p.Email)
		p.Email = &lower
	}
	u, err := scanUser(r.DB.QueryRow(ctx, `
		UPDATE users SET
		  username = COALESCE($2, username),
		  name     = COALESCE($3, name),
		  email    = COALESCE($4, email),
		  address  = COALESCE($5, address),
		  profile  = COALESCE($6, profile),
		  updated_at = now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING id, username, name, email, address, profile, role, password_hash, created_at, updated_at, deleted_at`,
		id, p.Username, p.Name, p.Email, p.Address, p.Profile))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, uniqueViolation(err)
	}
	return u, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	ct, err := r.DB.Exec(ctx, `UPDATE users SET deleted_at=now(), updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Restore undeletes a user. It fails with a duplicate error when a live account has since taken
// the username or email.
func (r *Repo) Restore(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	ct, err := r.DB.Exec(ctx, `UPDATE users SET deleted_at=NULL, updated_at=now() WHERE id=$1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return uniqueViolation(err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return ErrNotDeleted
}
