package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/paging"
	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(tag string) users.NewUser {
	return users.NewUser{Username: "user" + tag, Name: "Test " + tag, Email: tag + "@Example.com", PasswordHash: "hash"}
}

func TestRepo_CreateAndFind(t *testing.T) {
	repo := &users.Repo{DB: pgtest.Open(t)}
	ctx := context.Background()
	tag := uuid.NewString()[:8]

	u, err := repo.Create(ctx, newUser(tag))
	require.NoError(t, err)
	assert.Equal(t, "customer", u.Role)
	assert.Equal(t, tag+"@example.com", u.Email)

	byName, err := repo.FindByLogin(ctx, "user"+tag)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	byEmail, err := repo.FindByLogin(ctx, tag+"@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.FindByLogin(ctx, "nobody-"+tag)
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestRepo_Duplicates(t *testing.T) {
	repo := &users.Repo{DB: pgtest.Open(t)}
	ctx := context.Background()
	tag := uuid.NewString()[:8]
	u, err := repo.Create(ctx, newUser(tag))
	require.NoError(t, err)

	dup := newUser(tag)
	dup.Email = "other" + tag + "@example.com"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, users.ErrDuplicateUsername)

	dup = newUser(tag)
	dup.Username = "other" + tag
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, users.ErrDuplicateEmail)

	// Deleting frees the username and email; restoring the old account then conflicts.
	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.Create(ctx, newUser(tag))
	require.NoError(t, err)
	err = repo.Restore(ctx, u.ID)
	assert.True(t, errors.Is(err, users.ErrDuplicateUsername) || errors.Is(err, users.ErrDuplicateEmail), "got %v", err)
}

func TestRepo_DeleteRestore(t *testing.T) {
	repo := &users.Repo{DB: pgtest.Open(t)}
	ctx := context.Background()
	tag := uuid.NewString()[:8]
	u, err := repo.Create(ctx, newUser(tag))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), users.ErrUserNotFound)
	_, err = repo.Get(ctx, u.ID)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	live, _, err := repo.List(ctx, paging.Page{Search: tag})
	require.NoError(t, err)
	assert.Empty(t, live)
	all, _, err := repo.ListAll(ctx, paging.Page{Search: tag})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Restore(ctx, u.ID))
	assert.ErrorIs(t, repo.Restore(ctx, u.ID), users.ErrNotDeleted)
	assert.ErrorIs(t, repo.Restore(ctx, uuid.NewString()), users.ErrUserNotFound)
}

func TestRepo_Update(t *testing.T) {
	repo := &users.Repo{DB: pgtest.Open(t)}
	ctx := context.Background()
	tag := uuid.NewString()[:8]
	u, err := repo.Create(ctx, newUser(tag))
	require.NoError(t, err)

	addr := "Jl. Merdeka 1"
	got, err := repo.Update(ctx, u.ID, users.Patch{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, got.Address)
	assert.Equal(t, u.Name, got.Name)
}
