package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tier-badge/internal/types"
)

// setupTestRedis creates a RedisCache backed by a miniredis instance.
func setupTestRedis(t *testing.T) *RedisCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisCacheFromClient(client)
}

func TestNullifierIndex_RecordAndLookup(t *testing.T) {
	cache := setupTestRedis(t)
	idx := NewNullifierIndex(cache)
	ctx := testContext(t)

	var n types.Nullifier
	n[31] = 0x01
	owner := solana.NewWallet().PublicKey()

	recorded, err := idx.Record(ctx, n, owner)
	require.NoError(t, err)
	assert.True(t, recorded, "first record should win")

	got, found, err := idx.Lookup(ctx, n)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, owner, got)
}

func TestNullifierIndex_FirstWriterWins(t *testing.T) {
	cache := setupTestRedis(t)
	idx := NewNullifierIndex(cache)
	ctx := testContext(t)

	var n types.Nullifier
	n[0] = 0xaa
	first := solana.NewWallet().PublicKey()
	second := solana.NewWallet().PublicKey()

	recorded, err := idx.Record(ctx, n, first)
	require.NoError(t, err)
	assert.True(t, recorded)

	// A second owner presenting the same nullifier is observed but does not
	// overwrite the index; issuance does not treat this as an error.
	recorded, err = idx.Record(ctx, n, second)
	require.NoError(t, err)
	assert.False(t, recorded)

	got, found, err := idx.Lookup(ctx, n)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first, got)
}

func TestNullifierIndex_LookupMissing(t *testing.T) {
	cache := setupTestRedis(t)
	idx := NewNullifierIndex(cache)
	ctx := testContext(t)

	var n types.Nullifier
	_, found, err := idx.Lookup(ctx, n)
	require.NoError(t, err)
	assert.False(t, found)
}
