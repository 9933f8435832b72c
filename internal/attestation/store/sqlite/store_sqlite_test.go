package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/sentinel"
)

var (
	alice = domain.MustParseIdentity("0x" + strings.Repeat("a1", domain.IdentityLen))
	bob   = domain.MustParseIdentity("0x" + strings.Repeat("b2", domain.IdentityLen))
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_GetMissing(t *testing.T) {
	store := openStore(t)

	_, err := store.Get(context.Background(), alice)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Put(ctx, alice, 2_000))
	require.NoError(t, store.Put(ctx, alice, 1_000))

	ts, err := store.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(1_000), ts)
}

func TestStore_PutIfNewer(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.PutIfNewer(ctx, alice, 2_000))
	assert.ErrorIs(t, store.PutIfNewer(ctx, alice, 1_999), sentinel.ErrStale)
	assert.NoError(t, store.PutIfNewer(ctx, alice, 2_000), "equal timestamp is accepted")
	require.NoError(t, store.PutIfNewer(ctx, alice, 2_001))

	ts, err := store.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(2_001), ts)
}

func TestStore_GetManyOmitsMissing(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Put(ctx, alice, 7))

	got, err := store.GetMany(ctx, []domain.Identity{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, map[domain.Identity]models.Timestamp{alice: 7}, got)

	empty, err := store.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, alice, 42))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	ts, err := reopened.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(42), ts)
}
