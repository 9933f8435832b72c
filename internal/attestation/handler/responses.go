package handler

import (
	"proofgate/internal/attestation/models"
)

// InteractResponse is the HTTP response for POST /interact.
type InteractResponse struct {
	Identity  string `json:"identity"`
	Timestamp int64  `json:"timestamp"`
}

// StatusResponse describes one registry entry.
type StatusResponse struct {
	Identity   string `json:"identity"`
	State      string `json:"state"`
	AttestedAt *int64 `json:"attested_at,omitempty"`
	ExpiresAt  *int64 `json:"expires_at,omitempty"`
}

// StatusBatchResponse is the HTTP response for POST /registry/status.
type StatusBatchResponse struct {
	Entries []StatusResponse `json:"entries"`
}

func FromRecord(record models.InteractionRecord) *InteractResponse {
	return &InteractResponse{
		Identity:  record.Identity.String(),
		Timestamp: int64(record.Timestamp),
	}
}

func FromStatus(status models.EntryStatus) StatusResponse {
	resp := StatusResponse{
		Identity: status.Identity.String(),
		State:    string(status.State),
	}
	if status.State != models.StateUnverified {
		attestedAt, expiresAt := int64(status.AttestedAt), int64(status.ExpiresAt)
		resp.AttestedAt = &attestedAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}
