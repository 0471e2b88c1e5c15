package zkproof

import (
	"encoding/binary"

	"github.com/tier-badge/internal/types"
)

// PublicSignals are the decoded public outputs of a compatible wealth tier
// circuit. The positional contract is part of the protocol: any circuit
// exposing [tier_lower_bound, tier_upper_bound, nullifier, timestamp] in
// this order is compatible.
type PublicSignals struct {
	TierLowerBound uint64
	TierUpperBound uint64
	Nullifier      types.Nullifier
	Timestamp      int64
}

// DecodePublicInputs interprets the four 32-byte public outputs positionally
// with big-endian encoding. Numeric values occupy the low 8 bytes; the high
// 24 bytes belong to the field-element encoding convention and are discarded
// without validation. The nullifier is kept as the full opaque 32 bytes.
func DecodePublicInputs(inputs [types.NumPublicInputs][32]byte) PublicSignals {
	return PublicSignals{
		TierLowerBound: binary.BigEndian.Uint64(inputs[0][24:32]),
		TierUpperBound: binary.BigEndian.Uint64(inputs[1][24:32]),
		Nullifier:      types.NullifierFromBytes(inputs[2]),
		Timestamp:      int64(binary.BigEndian.Uint64(inputs[3][24:32])),
	}
}
