package registry

import (
	"context"
	"time"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// Attempt decides whether caller may perform the gated operation at now.
// now must come from the server's trusted clock. Attempt never mutates the
// registry; on success the returned record carries now, not the attestation
// time, and the caller is responsible for emitting it.
func Attempt(ctx context.Context, reg *Registry, now time.Time, caller domain.Identity) (models.InteractionRecord, error) {
	if caller.IsZero() {
		return models.InteractionRecord{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	ts, found, err := reg.lookup(ctx, caller)
	if err != nil {
		return models.InteractionRecord{}, err
	}
	nowTS := models.FromTime(now)
	switch reg.classify(caller, ts, found, nowTS).State {
	case models.StateUnverified:
		return models.InteractionRecord{}, models.Coded(models.ErrNotYetVerified)
	case models.StateExpired:
		return models.InteractionRecord{}, models.Coded(models.ErrVerificationExpired)
	}
	return models.InteractionRecord{Identity: caller, Timestamp: nowTS}, nil
}
