package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayea-id/nayea/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Hour)
}

func TestStoreRegisterAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tok := &Token{ID: "tok-1", Principal: staffPrincipal(), IssuedAt: time.Now()}
	require.NoError(t, store.Register(ctx, tok))

	principal, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, staffPrincipal(), *principal)
}

func TestStoreLookupMissingIsRevoked(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Lookup(context.Background(), "never-registered")
	assert.True(t, errors.Is(err, shared.ErrSessionRevoked), "got %v", err)
}

func TestStoreRevoke(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tok := &Token{ID: "tok-1", Principal: staffPrincipal(), IssuedAt: time.Now()}
	require.NoError(t, store.Register(ctx, tok))
	require.NoError(t, store.Revoke(ctx, "tok-1"))

	_, err := store.Lookup(ctx, "tok-1")
	assert.True(t, errors.Is(err, shared.ErrSessionRevoked))

	// Revoking twice is fine.
	assert.NoError(t, store.Revoke(ctx, "tok-1"))
}

func TestStoreRenewRotatesKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &Token{ID: "tok-old", Principal: staffPrincipal(), IssuedAt: time.Now()}
	require.NoError(t, store.Register(ctx, old))

	fresh := &Token{ID: "tok-new", Principal: staffPrincipal(), IssuedAt: time.Now()}
	require.NoError(t, store.Renew(ctx, old.ID, fresh))

	_, err := store.Lookup(ctx, "tok-old")
	assert.True(t, errors.Is(err, shared.ErrSessionRevoked))

	principal, err := store.Lookup(ctx, "tok-new")
	require.NoError(t, err)
	assert.Equal(t, staffPrincipal(), *principal)
}
