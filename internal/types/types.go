// Package types provides common type definitions for the tier badge service.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Tier identifies one of the seven fixed wealth brackets.
type Tier uint8

const (
	// TierSeed represents net worth below $1K
	TierSeed Tier = iota + 1
	// TierSprout represents net worth between $1K and $10K
	TierSprout
	// TierTree represents net worth between $10K and $50K
	TierTree
	// TierMountain represents net worth between $50K and $250K
	TierMountain
	// TierOcean represents net worth between $250K and $1M
	TierOcean
	// TierMoon represents net worth between $1M and $5M
	TierMoon
	// TierSun represents net worth above $5M
	TierSun
)

var tierNames = map[Tier]string{
	TierSeed:     "seed",
	TierSprout:   "sprout",
	TierTree:     "tree",
	TierMountain: "mountain",
	TierOcean:    "ocean",
	TierMoon:     "moon",
	TierSun:      "sun",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Valid reports whether the tier is within the 1..7 range
func (t Tier) Valid() bool {
	return t >= TierSeed && t <= TierSun
}

// TierBounds is an exact bracket boundary pair in USD cents
type TierBounds struct {
	Lower uint64
	Upper uint64
}

// tierBounds maps each canonical boundary pair to its tier. Only an exact
// match classifies; overlapping or partially-matching pairs do not.
var tierBounds = map[TierBounds]Tier{
	{0, 100_000}:                      TierSeed,
	{100_000, 1_000_000}:              TierSprout,
	{1_000_000, 5_000_000}:            TierTree,
	{5_000_000, 25_000_000}:           TierMountain,
	{25_000_000, 100_000_000}:         TierOcean,
	{100_000_000, 500_000_000}:        TierMoon,
	{500_000_000, 10_000_000_000_000}: TierSun,
}

// TierForBounds classifies an exact (lower, upper) boundary pair. The claimed
// bounds are taken at face value; there is no independent range check.
func TierForBounds(lower, upper uint64) (Tier, bool) {
	tier, ok := tierBounds[TierBounds{Lower: lower, Upper: upper}]
	return tier, ok
}

// BoundsForTier returns the canonical boundary pair for a tier
func BoundsForTier(t Tier) (TierBounds, bool) {
	for bounds, tier := range tierBounds {
		if tier == t {
			return bounds, true
		}
	}
	return TierBounds{}, false
}

// Nullifier is the opaque one-way commitment produced inside the proof
// circuit. It is recorded verbatim and never decoded numerically.
type Nullifier [32]byte

// Hex returns the lowercase hex encoding of the nullifier
func (n Nullifier) Hex() string {
	return hex.EncodeToString(n[:])
}

// Bytes returns the nullifier as a byte slice
func (n Nullifier) Bytes() []byte {
	return n[:]
}

// MarshalJSON encodes the nullifier as a hex string
func (n Nullifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Hex())
}

// UnmarshalJSON decodes the nullifier from a hex string
func (n *Nullifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid nullifier encoding: %w", err)
	}
	if len(raw) != len(n) {
		return fmt.Errorf("invalid nullifier length: %d", len(raw))
	}
	copy(n[:], raw)
	return nil
}

// NullifierFromBytes copies a 32-byte value into a Nullifier
func NullifierFromBytes(raw [32]byte) Nullifier {
	return Nullifier(raw)
}

// Protocol constants
const (
	// BadgeValiditySeconds is the fixed badge validity window (30 days)
	BadgeValiditySeconds int64 = 30 * 24 * 60 * 60

	// MaxProofAgeSeconds is the maximum accepted proof timestamp staleness (10 minutes)
	MaxProofAgeSeconds int64 = 10 * 60

	// NumPublicInputs is the number of 32-byte public outputs a compatible circuit exposes
	NumPublicInputs = 4

	// ProofASize is the byte length of the first proof group element
	ProofASize = 64
	// ProofBSize is the byte length of the second proof group element
	ProofBSize = 128
	// ProofCSize is the byte length of the third proof group element
	ProofCSize = 64
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Error codes surfaced by the badge service
const (
	// ErrCodeProofVerificationFailed covers both malformed proof inputs and
	// cryptographic rejection; the two causes are deliberately not
	// distinguished to the caller.
	ErrCodeProofVerificationFailed = "PROOF_VERIFICATION_FAILED"
	// ErrCodeInvalidTier means the decoded bounds match no canonical pair
	ErrCodeInvalidTier = "INVALID_TIER"
	// ErrCodeProofTooOld means the proof timestamp is more than 10 minutes behind current time
	ErrCodeProofTooOld = "PROOF_TOO_OLD"
	// ErrCodeNullifierAlreadyUsed is declared in the taxonomy; no issuance
	// path raises it today. The nullifier index exists as the hook for it.
	ErrCodeNullifierAlreadyUsed = "NULLIFIER_ALREADY_USED"
	// ErrCodeBadgeNotExpired means revocation was attempted before expiry
	ErrCodeBadgeNotExpired = "BADGE_NOT_EXPIRED"
	// ErrCodeBadgeNotFound means no badge exists at the caller's derived address
	ErrCodeBadgeNotFound = "BADGE_NOT_FOUND"
	// ErrCodeUnauthorized means the caller is not the badge owner
	ErrCodeUnauthorized = "UNAUTHORIZED"
)
