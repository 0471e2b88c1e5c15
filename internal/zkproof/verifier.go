// Package zkproof provides Groth16 proof verification for wealth tier claims.
//
// Proofs are presented the way the on-chain verifier receives them: three
// fixed-length byte blobs for the proof group elements and four 32-byte
// public outputs, checked against a single process-wide verifying key.
package zkproof

import (
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/tier-badge/internal/types"
)

// Verifier checks a wealth tier proof against its public outputs. Any error
// means the proof must be rejected; callers are expected to collapse all
// failure causes into a single verification-failed condition.
type Verifier interface {
	VerifyProof(
		proofA [types.ProofASize]byte,
		proofB [types.ProofBSize]byte,
		proofC [types.ProofCSize]byte,
		publicInputs [types.NumPublicInputs][32]byte,
	) error
}

// Groth16Verifier verifies BN254 Groth16 proofs against a fixed verifying
// key loaded once at construction and immutable afterwards.
type Groth16Verifier struct {
	vk *groth16bn254.VerifyingKey
}

// NewGroth16Verifier loads the verifying key from the given path. There is
// exactly one verifying key per deployment; it is not reloadable.
func NewGroth16Verifier(path string) (*Groth16Verifier, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open verifying key: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}

	bn254VK, ok := vk.(*groth16bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected verifying key type %T", vk)
	}

	if got := len(bn254VK.G1.K) - 1; got != types.NumPublicInputs {
		return nil, fmt.Errorf("verifying key expects %d public inputs, want %d", got, types.NumPublicInputs)
	}

	return &Groth16Verifier{vk: bn254VK}, nil
}

// VerifyProof runs the Groth16 pairing check. Construction failures
// (malformed points, non-canonical encodings) and verification failures are
// equally terminal.
func (v *Groth16Verifier) VerifyProof(
	proofA [types.ProofASize]byte,
	proofB [types.ProofBSize]byte,
	proofC [types.ProofCSize]byte,
	publicInputs [types.NumPublicInputs][32]byte,
) error {
	ar, err := decodeG1(proofA[:])
	if err != nil {
		return fmt.Errorf("proof element A: %w", err)
	}
	// A arrives with its y-coordinate pre-negated per the wire convention;
	// undo it before the pairing check.
	ar.Neg(&ar)

	bs, err := decodeG2(proofB[:])
	if err != nil {
		return fmt.Errorf("proof element B: %w", err)
	}

	krs, err := decodeG1(proofC[:])
	if err != nil {
		return fmt.Errorf("proof element C: %w", err)
	}

	publicWitness := make(fr.Vector, len(publicInputs))
	for i := range publicInputs {
		if err := publicWitness[i].SetBytesCanonical(publicInputs[i][:]); err != nil {
			return fmt.Errorf("public input %d: %w", i, err)
		}
	}

	proof := &groth16bn254.Proof{
		Ar:  ar,
		Bs:  bs,
		Krs: krs,
	}

	if err := groth16bn254.Verify(proof, v.vk, publicWitness); err != nil {
		return fmt.Errorf("pairing check failed: %w", err)
	}

	return nil
}

// decodeG1 parses an uncompressed big-endian G1 point (x || y).
func decodeG1(raw []byte) (curve.G1Affine, error) {
	var p curve.G1Affine
	if err := p.X.SetBytesCanonical(raw[:32]); err != nil {
		return p, fmt.Errorf("non-canonical x coordinate: %w", err)
	}
	if err := p.Y.SetBytesCanonical(raw[32:64]); err != nil {
		return p, fmt.Errorf("non-canonical y coordinate: %w", err)
	}
	if p.IsInfinity() {
		return p, fmt.Errorf("point at infinity")
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("point not on curve")
	}
	return p, nil
}

// decodeG2 parses an uncompressed big-endian G2 point with each coordinate's
// imaginary limb first (x.a1 || x.a0 || y.a1 || y.a0).
func decodeG2(raw []byte) (curve.G2Affine, error) {
	var p curve.G2Affine
	if err := p.X.A1.SetBytesCanonical(raw[:32]); err != nil {
		return p, fmt.Errorf("non-canonical x coordinate: %w", err)
	}
	if err := p.X.A0.SetBytesCanonical(raw[32:64]); err != nil {
		return p, fmt.Errorf("non-canonical x coordinate: %w", err)
	}
	if err := p.Y.A1.SetBytesCanonical(raw[64:96]); err != nil {
		return p, fmt.Errorf("non-canonical y coordinate: %w", err)
	}
	if err := p.Y.A0.SetBytesCanonical(raw[96:128]); err != nil {
		return p, fmt.Errorf("non-canonical y coordinate: %w", err)
	}
	if p.IsInfinity() {
		return p, fmt.Errorf("point at infinity")
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("point not on curve")
	}
	if !p.IsInSubGroup() {
		return p, fmt.Errorf("point not in correct subgroup")
	}
	return p, nil
}
