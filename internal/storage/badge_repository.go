package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/tier-badge/internal/models"
	"github.com/tier-badge/internal/types"
)

// ErrBadgeNotFound is returned when no badge exists at the derived address
var ErrBadgeNotFound = errors.New("badge not found")

// BadgeRepository handles tier badge persistence. Badges are keyed by the
// deterministic address derived from the owner, so the database's row-level
// locking serializes concurrent writes to the same owner's badge.
type BadgeRepository struct {
	db *PostgresDB
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *PostgresDB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Upsert writes a badge, fully replacing any existing record at the same
// address. Every field is overwritten; there is no partial update.
func (r *BadgeRepository) Upsert(ctx context.Context, badge *models.TierBadge) error {
	now := time.Now()
	badge.UpdatedAt = now
	if badge.CreatedAt.IsZero() {
		badge.CreatedAt = now
	}

	query := `
		INSERT INTO tier_badges (
			address, owner, tier, tier_lower_bound, tier_upper_bound,
			nullifier, verified_at, expires_at, bump, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (address) DO UPDATE SET
			owner = EXCLUDED.owner,
			tier = EXCLUDED.tier,
			tier_lower_bound = EXCLUDED.tier_lower_bound,
			tier_upper_bound = EXCLUDED.tier_upper_bound,
			nullifier = EXCLUDED.nullifier,
			verified_at = EXCLUDED.verified_at,
			expires_at = EXCLUDED.expires_at,
			bump = EXCLUDED.bump,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		badge.Address,
		badge.Owner.String(),
		int16(badge.Tier),
		int64(badge.TierLowerBound), // #nosec G115 - bounds are canonical pairs well below MaxInt64
		int64(badge.TierUpperBound), // #nosec G115
		badge.Nullifier.Bytes(),
		badge.VerifiedAt,
		badge.ExpiresAt,
		int16(badge.Bump),
		badge.CreatedAt,
		badge.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert badge: %w", err)
	}

	return nil
}

// GetByOwner retrieves the badge at the owner's derived address
func (r *BadgeRepository) GetByOwner(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, error) {
	address, _ := models.DeriveBadgeAddress(owner)

	query := `
		SELECT address, owner, tier, tier_lower_bound, tier_upper_bound,
		       nullifier, verified_at, expires_at, bump, created_at, updated_at
		FROM tier_badges
		WHERE address = $1
	`

	row := r.db.Pool().QueryRow(ctx, query, address)
	badge, err := scanBadge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}

	return badge, nil
}

// Delete permanently destroys the badge at the owner's derived address and
// returns the deleted record. Returns ErrBadgeNotFound when nothing exists
// at that address, which is how a double revocation fails.
func (r *BadgeRepository) Delete(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, error) {
	address, _ := models.DeriveBadgeAddress(owner)

	query := `
		DELETE FROM tier_badges
		WHERE address = $1
		RETURNING address, owner, tier, tier_lower_bound, tier_upper_bound,
		          nullifier, verified_at, expires_at, bump, created_at, updated_at
	`

	row := r.db.Pool().QueryRow(ctx, query, address)
	badge, err := scanBadge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to delete badge: %w", err)
	}

	return badge, nil
}

// ListExpired returns badges whose expiry is strictly before now
func (r *BadgeRepository) ListExpired(ctx context.Context, now int64, limit int) ([]*models.TierBadge, error) {
	query := `
		SELECT address, owner, tier, tier_lower_bound, tier_upper_bound,
		       nullifier, verified_at, expires_at, bump, created_at, updated_at
		FROM tier_badges
		WHERE expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.TierBadge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating badges: %w", err)
	}

	return badges, nil
}

// Count returns the total number of badges
func (r *BadgeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM tier_badges`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}
	return count, nil
}

// scanBadge reads one badge row from a pgx row scanner
func scanBadge(row pgx.Row) (*models.TierBadge, error) {
	var (
		badge      models.TierBadge
		ownerStr   string
		tier       int16
		lowerBound int64
		upperBound int64
		nullifier  []byte
		bump       int16
	)

	err := row.Scan(
		&badge.Address,
		&ownerStr,
		&tier,
		&lowerBound,
		&upperBound,
		&nullifier,
		&badge.VerifiedAt,
		&badge.ExpiresAt,
		&bump,
		&badge.CreatedAt,
		&badge.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	owner, err := solana.PublicKeyFromBase58(ownerStr)
	if err != nil {
		return nil, fmt.Errorf("stored owner is not a valid public key: %w", err)
	}
	badge.Owner = owner

	badge.Tier = types.Tier(tier)                // #nosec G115 - tier column is constrained to 1..7
	badge.TierLowerBound = uint64(lowerBound)    // #nosec G115 - bounds are canonical pairs
	badge.TierUpperBound = uint64(upperBound)    // #nosec G115
	badge.Bump = uint8(bump)                     // #nosec G115 - bump column is constrained to 0..255
	if len(nullifier) == len(badge.Nullifier) {
		copy(badge.Nullifier[:], nullifier)
	} else {
		return nil, fmt.Errorf("stored nullifier has invalid length: %d", len(nullifier))
	}

	return &badge, nil
}
