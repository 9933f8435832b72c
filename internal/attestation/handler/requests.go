package handler

import (
	"encoding/hex"
	"strings"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	pstrings "proofgate/pkg/platform/strings"
)

// maxMessageHexLen bounds the hex-encoded message; a well-formed one is
// 2*(66+13) characters.
const maxMessageHexLen = 512

// SubmitAttestationRequest is the HTTP request body for POST /attestations.
type SubmitAttestationRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`

	parsed models.Attestation
}

// Validate decodes the hex fields. Content checks belong to the verifier.
func (r *SubmitAttestationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Message) > maxMessageHexLen {
		return dErrors.New(dErrors.CodeValidation, "message is too long")
	}

	var err error
	if r.parsed.Message, err = decodeHex("message", r.Message); err != nil {
		return err
	}
	if r.parsed.Signature, err = decodeHex("signature", r.Signature); err != nil {
		return err
	}
	if r.parsed.PublicKey, err = decodeHex("public_key", r.PublicKey); err != nil {
		return err
	}
	return nil
}

// Attestation returns the decoded attestation.
func (r *SubmitAttestationRequest) Attestation() models.Attestation {
	return r.parsed
}

// StatusBatchRequest is the HTTP request body for POST /registry/status.
type StatusBatchRequest struct {
	Identities []string `json:"identities"`

	parsed []domain.Identity
}

func (r *StatusBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Identities = pstrings.DedupeAndTrimLower(r.Identities)
	if len(r.Identities) == 0 {
		return dErrors.New(dErrors.CodeValidation, "identities is required")
	}
	r.parsed = make([]domain.Identity, 0, len(r.Identities))
	for _, raw := range r.Identities {
		identity, err := domain.ParseIdentity(raw)
		if err != nil {
			return err
		}
		r.parsed = append(r.parsed, identity)
	}
	return nil
}

func (r *StatusBatchRequest) ParsedIdentities() []domain.Identity {
	return r.parsed
}

func decodeHex(field, value string) ([]byte, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if value == "" {
		return nil, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be hex encoded")
	}
	return b, nil
}
