package storage

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/tier-badge/internal/config"
	"github.com/tier-badge/internal/types"
)

// setupTestPostgres connects to a local test database, skipping when
// Postgres is not available.
func setupTestPostgres(t *testing.T) *PostgresDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.PostgresConfig{
		Host:           "localhost",
		Port:           "5432",
		Database:       "tier_badge_test",
		User:           "badge",
		Password:       "",
		MaxConnections: 5,
	}

	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

func TestBadgeRepository_UpsertOverwrites(t *testing.T) {
	db := setupTestPostgres(t)
	repo := NewBadgeRepository(db)
	ctx := testContext(t)

	owner := solana.NewWallet().PublicKey()
	badge := testBadge(owner)

	if err := repo.Upsert(ctx, badge); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	defer func() {
		_, _ = repo.Delete(ctx, owner)
	}()

	got, err := repo.GetByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("GetByOwner() error = %v", err)
	}
	if got.Tier != types.TierSprout {
		t.Errorf("Tier = %v, want %v", got.Tier, types.TierSprout)
	}

	// A second upsert at the same address fully replaces every field
	replacement := testBadge(owner)
	replacement.Tier = types.TierOcean
	replacement.TierLowerBound = 25_000_000
	replacement.TierUpperBound = 100_000_000
	replacement.Nullifier[0] = 0xff
	replacement.VerifiedAt = badge.VerifiedAt + 1000
	replacement.ExpiresAt = replacement.VerifiedAt + types.BadgeValiditySeconds

	if err := repo.Upsert(ctx, replacement); err != nil {
		t.Fatalf("Upsert() overwrite error = %v", err)
	}

	got, err = repo.GetByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("GetByOwner() after overwrite error = %v", err)
	}
	if got.Tier != types.TierOcean {
		t.Errorf("Tier after overwrite = %v, want %v", got.Tier, types.TierOcean)
	}
	if got.VerifiedAt != replacement.VerifiedAt {
		t.Errorf("VerifiedAt after overwrite = %v, want %v", got.VerifiedAt, replacement.VerifiedAt)
	}
	if got.Nullifier[0] != 0xff {
		t.Error("Nullifier was not replaced")
	}
}

func TestBadgeRepository_DeleteReturnsRecord(t *testing.T) {
	db := setupTestPostgres(t)
	repo := NewBadgeRepository(db)
	ctx := testContext(t)

	owner := solana.NewWallet().PublicKey()
	if err := repo.Upsert(ctx, testBadge(owner)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	deleted, err := repo.Delete(ctx, owner)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.Owner != owner {
		t.Errorf("Deleted owner = %v, want %v", deleted.Owner, owner)
	}

	// Second delete has no record left to address
	if _, err := repo.Delete(ctx, owner); !errors.Is(err, ErrBadgeNotFound) {
		t.Errorf("second Delete() error = %v, want ErrBadgeNotFound", err)
	}

	if _, err := repo.GetByOwner(ctx, owner); !errors.Is(err, ErrBadgeNotFound) {
		t.Errorf("GetByOwner() after delete error = %v, want ErrBadgeNotFound", err)
	}
}
