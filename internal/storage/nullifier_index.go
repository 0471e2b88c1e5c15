package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/tier-badge/internal/types"
)

// NullifierIndex is a secondary index from proof nullifier to badge owner.
//
// Issuance records every accepted nullifier here, but nothing consults the
// index on the acceptance path: the NULLIFIER_ALREADY_USED error is declared
// in the taxonomy and never raised. The index exists so enforcement can be
// added without a data backfill once the intended comparison scope (global
// vs. per-owner) is settled.
type NullifierIndex struct {
	redis *RedisCache
}

// NewNullifierIndex creates a new nullifier index
func NewNullifierIndex(redis *RedisCache) *NullifierIndex {
	return &NullifierIndex{redis: redis}
}

func nullifierKey(n types.Nullifier) string {
	return fmt.Sprintf("nullifier:%s", n.Hex())
}

// Record associates a nullifier with the owner it backed a badge for. The
// first writer wins; a repeat observation is reported but not an error.
func (idx *NullifierIndex) Record(ctx context.Context, n types.Nullifier, owner solana.PublicKey) (bool, error) {
	set, err := idx.redis.SetNX(ctx, nullifierKey(n), owner.String(), 0)
	if err != nil {
		return false, fmt.Errorf("failed to record nullifier: %w", err)
	}
	return set, nil
}

// Lookup returns the owner previously recorded for a nullifier, if any
func (idx *NullifierIndex) Lookup(ctx context.Context, n types.Nullifier) (solana.PublicKey, bool, error) {
	value, err := idx.redis.Get(ctx, nullifierKey(n))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return solana.PublicKey{}, false, nil
		}
		return solana.PublicKey{}, false, fmt.Errorf("failed to look up nullifier: %w", err)
	}

	owner, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, false, fmt.Errorf("indexed owner is not a valid public key: %w", err)
	}

	return owner, true, nil
}
