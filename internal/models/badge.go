// Package models provides data models for persisted entities.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tier-badge/internal/types"
)

// badgeSeed is the fixed namespace tag mixed into every badge storage address.
const badgeSeed = "tier_badge"

// badgeBump is the derivation salt appended after the owner key. It is
// recorded on the badge so a stored key can always be re-derived.
const badgeBump uint8 = 255

// TierBadge is the single authoritative credential record a user holds.
// It is created or fully overwritten by proof acceptance and destroyed
// only by revocation after expiry; no partial update exists.
type TierBadge struct {
	// Address is the derived storage key; a pure function of Owner, so at
	// most one badge can exist per owner.
	Address string `json:"-"`

	// Owner is the wallet this badge belongs to
	Owner solana.PublicKey `json:"owner"`

	// Tier is the verified bracket index (1-7)
	Tier types.Tier `json:"tier"`

	// TierLowerBound is the bracket lower boundary in USD cents
	TierLowerBound uint64 `json:"tierLowerBound"`

	// TierUpperBound is the bracket upper boundary in USD cents
	TierUpperBound uint64 `json:"tierUpperBound"`

	// Nullifier is the circuit-derived commitment binding the badge to one
	// proof-generation event
	Nullifier types.Nullifier `json:"nullifier"`

	// VerifiedAt is the Unix timestamp claimed inside the proof's public outputs
	VerifiedAt int64 `json:"verifiedAt"`

	// ExpiresAt is always VerifiedAt plus the fixed validity window
	ExpiresAt int64 `json:"expiresAt"`

	// Bump is the address-derivation salt, not a semantic field of the credential
	Bump uint8 `json:"bump"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the badge is strictly past its expiry at now
func (b *TierBadge) Expired(now int64) bool {
	return now > b.ExpiresAt
}

// DeriveBadgeAddress computes the deterministic storage address for an
// owner's badge: SHA-256 over (namespace tag, owner key, bump).
func DeriveBadgeAddress(owner solana.PublicKey) (string, uint8) {
	h := sha256.New()
	h.Write([]byte(badgeSeed))
	h.Write(owner.Bytes())
	h.Write([]byte{badgeBump})
	return hex.EncodeToString(h.Sum(nil)), badgeBump
}
