package api

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/tier-badge/internal/service"
	"github.com/tier-badge/internal/types"
)

// VerifyTierRequest is the wire form of a proof submission. Proof parts and
// public inputs are base64-encoded byte blobs with exact expected lengths.
type VerifyTierRequest struct {
	ProofA       string   `json:"proofA"`
	ProofB       string   `json:"proofB"`
	ProofC       string   `json:"proofC"`
	PublicInputs []string `json:"publicInputs"`
}

// requireWallet extracts and validates the caller's wallet address from
// the X-Wallet-Address header. In production this would come from a signed
// auth token; the header keeps the identity model explicit.
func requireWallet(w http.ResponseWriter, r *http.Request) (solana.PublicKey, bool) {
	raw := r.Header.Get("X-Wallet-Address")
	if raw == "" {
		respondError(w, http.StatusUnauthorized, types.ErrCodeUnauthorized, "Wallet address required", nil)
		return solana.PublicKey{}, false
	}
	wallet, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		respondError(w, http.StatusUnauthorized, types.ErrCodeUnauthorized, "Invalid wallet address", nil)
		return solana.PublicKey{}, false
	}
	return wallet, true
}

func decodeFixedBlob(encoded string, size int) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(raw))
	}
	return raw, nil
}

// handleVerifyTier handles POST /api/badges/verify - Verify proof and issue badge
func (s *Server) handleVerifyTier(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}

	var req VerifyTierRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	input := service.VerifyTierInput{Owner: wallet}

	proofA, err := decodeFixedBlob(req.ProofA, types.ProofASize)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, fmt.Sprintf("Invalid proofA: %v", err), nil)
		return
	}
	copy(input.ProofA[:], proofA)

	proofB, err := decodeFixedBlob(req.ProofB, types.ProofBSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, fmt.Sprintf("Invalid proofB: %v", err), nil)
		return
	}
	copy(input.ProofB[:], proofB)

	proofC, err := decodeFixedBlob(req.ProofC, types.ProofCSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, fmt.Sprintf("Invalid proofC: %v", err), nil)
		return
	}
	copy(input.ProofC[:], proofC)

	if len(req.PublicInputs) != types.NumPublicInputs {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
			fmt.Sprintf("Expected %d public inputs, got %d", types.NumPublicInputs, len(req.PublicInputs)), nil)
		return
	}
	for i, encoded := range req.PublicInputs {
		raw, err := decodeFixedBlob(encoded, 32)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, fmt.Sprintf("Invalid public input %d: %v", i, err), nil)
			return
		}
		copy(input.PublicInputs[i][:], raw)
	}

	result, err := s.badgeService.VerifyAndStoreTier(r.Context(), input)
	if err != nil {
		log.Printf("VerifyAndStoreTier error: %v", err)
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// handleRevokeTier handles DELETE /api/badges - Revoke the caller's expired badge
func (s *Server) handleRevokeTier(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}

	result, err := s.badgeService.RevokeExpiredTier(r.Context(), wallet)
	if err != nil {
		log.Printf("RevokeExpiredTier error: %v", err)
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGetBadge handles GET /api/badges/:owner - Look up a badge by owner
func (s *Server) handleGetBadge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ownerStr := vars["owner"]

	owner, err := solana.PublicKeyFromBase58(ownerStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid owner address", nil)
		return
	}

	view, err := s.badgeService.GetBadge(r.Context(), owner)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
