package service

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/gagliardetto/solana-go"

	"github.com/tier-badge/internal/audit"
	"github.com/tier-badge/internal/logging"
	"github.com/tier-badge/internal/models"
	"github.com/tier-badge/internal/storage"
	"github.com/tier-badge/internal/types"
	"github.com/tier-badge/internal/zkproof"
)

// ProofVerifier checks a Groth16 proof against the wealth-tier verifying key
type ProofVerifier interface {
	VerifyProof(proofA [64]byte, proofB [128]byte, proofC [64]byte, publicInputs [4][32]byte) error
}

// BadgeStore persists tier badges
type BadgeStore interface {
	Upsert(ctx context.Context, badge *models.TierBadge) error
	GetByOwner(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, error)
	Delete(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, error)
}

// NullifierRecorder tracks which proof nullifiers have been seen.
// Recording is observational for now; uniqueness is not enforced on issuance.
type NullifierRecorder interface {
	Record(ctx context.Context, nullifier types.Nullifier, owner solana.PublicKey) (bool, error)
}

// BadgeCacher provides a read-through cache over badge lookups. Get's
// second return reports a cache hit; a miss is not an error.
type BadgeCacher interface {
	Get(ctx context.Context, owner solana.PublicKey) (*models.TierBadge, bool, error)
	Set(ctx context.Context, badge *models.TierBadge) error
	Invalidate(ctx context.Context, owner solana.PublicKey) error
}

// BadgeService implements badge issuance and revocation
type BadgeService struct {
	verifier       ProofVerifier
	badgeRepo      BadgeStore
	nullifiers     NullifierRecorder
	cache          BadgeCacher
	emitter        audit.Emitter
	clock          clock.Clock
	storageDeposit uint64
	logger         *logging.Logger
}

// NewBadgeService creates a badge service
func NewBadgeService(
	verifier ProofVerifier,
	badgeRepo BadgeStore,
	nullifiers NullifierRecorder,
	cache BadgeCacher,
	emitter audit.Emitter,
	clk clock.Clock,
	storageDeposit uint64,
	logger *logging.Logger,
) *BadgeService {
	return &BadgeService{
		verifier:       verifier,
		badgeRepo:      badgeRepo,
		nullifiers:     nullifiers,
		cache:          cache,
		emitter:        emitter,
		clock:          clk,
		storageDeposit: storageDeposit,
		logger:         logger,
	}
}

// VerifyTierInput carries one proof submission
type VerifyTierInput struct {
	Owner        solana.PublicKey
	ProofA       [64]byte
	ProofB       [128]byte
	ProofC       [64]byte
	PublicInputs [4][32]byte
}

// VerifyTierResult reports the issued badge
type VerifyTierResult struct {
	Badge      *models.TierBadge `json:"badge"`
	Overwrote  bool              `json:"overwrote"`
	VerifiedAt int64             `json:"verifiedAt"`
}

// RevokeResult reports a completed revocation
type RevokeResult struct {
	Owner           string     `json:"owner"`
	Tier            types.Tier `json:"tier"`
	DepositReturned uint64     `json:"depositReturned"`
}

// BadgeView is a badge lookup result with derived state
type BadgeView struct {
	Badge   *models.TierBadge `json:"badge"`
	Expired bool              `json:"expired"`
}

// VerifyAndStoreTier verifies a wealth-tier proof and issues (or refreshes)
// the caller's badge. The badge account is keyed by owner, so a repeat
// submission replaces whatever tier was stored before.
func (s *BadgeService) VerifyAndStoreTier(ctx context.Context, input VerifyTierInput) (*VerifyTierResult, error) {
	if err := s.verifier.VerifyProof(input.ProofA, input.ProofB, input.ProofC, input.PublicInputs); err != nil {
		s.logger.WithError(err).WithField("owner", input.Owner.String()).Warn("Proof verification failed")
		return nil, &types.ServiceError{
			Code:    types.ErrCodeProofVerificationFailed,
			Message: "groth16 proof verification failed",
		}
	}

	signals := zkproof.DecodePublicInputs(input.PublicInputs)

	tier, ok := types.TierForBounds(signals.TierLowerBound, signals.TierUpperBound)
	if !ok {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeInvalidTier,
			Message: "public inputs do not match a canonical tier",
			Details: map[string]interface{}{
				"lowerBound": signals.TierLowerBound,
				"upperBound": signals.TierUpperBound,
			},
		}
	}

	now := s.clock.Now().Unix()
	// Future timestamps pass: only staleness is checked
	if now-signals.Timestamp > types.MaxProofAgeSeconds {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeProofTooOld,
			Message: fmt.Sprintf("proof timestamp is older than %d seconds", types.MaxProofAgeSeconds),
			Details: map[string]interface{}{
				"now":            now,
				"proofTimestamp": signals.Timestamp,
			},
		}
	}

	existing, err := s.badgeRepo.GetByOwner(ctx, input.Owner)
	if err != nil && err != storage.ErrBadgeNotFound {
		return nil, fmt.Errorf("failed to check existing badge: %w", err)
	}

	// The badge carries the timestamp claimed inside the proof, not the
	// server clock: the validity window anchors to when the proof was made.
	address, bump := models.DeriveBadgeAddress(input.Owner)
	badge := &models.TierBadge{
		Address:        address,
		Owner:          input.Owner,
		Tier:           tier,
		TierLowerBound: signals.TierLowerBound,
		TierUpperBound: signals.TierUpperBound,
		Nullifier:      signals.Nullifier,
		VerifiedAt:     signals.Timestamp,
		ExpiresAt:      signals.Timestamp + types.BadgeValiditySeconds,
		Bump:           bump,
	}

	if err := s.badgeRepo.Upsert(ctx, badge); err != nil {
		return nil, fmt.Errorf("failed to store badge: %w", err)
	}

	// Record the nullifier for future replay auditing. Failures here do not
	// roll back the badge write.
	if firstUse, err := s.nullifiers.Record(ctx, signals.Nullifier, input.Owner); err != nil {
		s.logger.WithError(err).Warn("Failed to record nullifier")
	} else if !firstUse {
		s.logger.WithFields(map[string]interface{}{
			"owner":     input.Owner.String(),
			"nullifier": signals.Nullifier.Hex(),
		}).Warn("Nullifier reused across submissions")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, badge); err != nil {
			s.logger.WithError(err).Warn("Failed to cache badge")
		}
	}

	s.emitAudit(ctx, badge, audit.ActionBadgeIssued, 0)

	s.logger.WithFields(map[string]interface{}{
		"owner":      input.Owner.String(),
		"tier":       badge.Tier.String(),
		"verifiedAt": badge.VerifiedAt,
		"expiresAt":  badge.ExpiresAt,
	}).Info("Tier badge issued")

	return &VerifyTierResult{
		Badge:      badge,
		Overwrote:  existing != nil,
		VerifiedAt: badge.VerifiedAt,
	}, nil
}

// RevokeExpiredTier removes the caller's badge once it has expired and
// returns the storage deposit that was held for it. Only the badge owner
// may revoke, and only strictly after expiry.
func (s *BadgeService) RevokeExpiredTier(ctx context.Context, caller solana.PublicKey) (*RevokeResult, error) {
	badge, err := s.badgeRepo.GetByOwner(ctx, caller)
	if err != nil {
		if err == storage.ErrBadgeNotFound {
			return nil, &types.ServiceError{
				Code:    types.ErrCodeBadgeNotFound,
				Message: "no badge found for owner",
			}
		}
		return nil, fmt.Errorf("failed to load badge: %w", err)
	}

	if !badge.Owner.Equals(caller) {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeUnauthorized,
			Message: "badge is not owned by caller",
		}
	}

	now := s.clock.Now().Unix()
	if !badge.Expired(now) {
		return nil, &types.ServiceError{
			Code:    types.ErrCodeBadgeNotExpired,
			Message: "badge has not expired yet",
			Details: map[string]interface{}{
				"now":       now,
				"expiresAt": badge.ExpiresAt,
			},
		}
	}

	deleted, err := s.badgeRepo.Delete(ctx, caller)
	if err != nil {
		if err == storage.ErrBadgeNotFound {
			return nil, &types.ServiceError{
				Code:    types.ErrCodeBadgeNotFound,
				Message: "no badge found for owner",
			}
		}
		return nil, fmt.Errorf("failed to delete badge: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, caller); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate badge cache")
		}
	}

	s.emitAudit(ctx, deleted, audit.ActionBadgeRevoked, s.storageDeposit)

	s.logger.WithFields(map[string]interface{}{
		"owner":           caller.String(),
		"tier":            deleted.Tier.String(),
		"depositReturned": s.storageDeposit,
	}).Info("Tier badge revoked")

	return &RevokeResult{
		Owner:           caller.String(),
		Tier:            deleted.Tier,
		DepositReturned: s.storageDeposit,
	}, nil
}

// GetBadge returns the badge for an owner, read through the cache
func (s *BadgeService) GetBadge(ctx context.Context, owner solana.PublicKey) (*BadgeView, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, owner); err == nil && hit {
			return &BadgeView{Badge: cached, Expired: cached.Expired(s.clock.Now().Unix())}, nil
		}
	}

	badge, err := s.badgeRepo.GetByOwner(ctx, owner)
	if err != nil {
		if err == storage.ErrBadgeNotFound {
			return nil, &types.ServiceError{
				Code:    types.ErrCodeBadgeNotFound,
				Message: "no badge found for owner",
			}
		}
		return nil, fmt.Errorf("failed to load badge: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, badge); err != nil {
			s.logger.WithError(err).Warn("Failed to cache badge")
		}
	}

	return &BadgeView{Badge: badge, Expired: badge.Expired(s.clock.Now().Unix())}, nil
}

func (s *BadgeService) emitAudit(ctx context.Context, badge *models.TierBadge, action string, deposit uint64) {
	if s.emitter == nil {
		return
	}
	event := audit.NewEvent(action, badge.Owner.String())
	event.Tier = uint8(badge.Tier)
	event.TierLowerBound = badge.TierLowerBound
	event.TierUpperBound = badge.TierUpperBound
	event.DepositReturned = deposit
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("Failed to emit audit event")
	}
}
