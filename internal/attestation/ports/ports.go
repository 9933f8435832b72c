// Package ports defines the interfaces the attestation core depends on.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/requestcontext"
)

// Store persists the identity → last-attested-at mapping. Entries are
// upserted and never deleted. Each call is atomic for its key.
type Store interface {
	// Get returns the stored timestamp or sentinel.ErrNotFound.
	Get(ctx context.Context, identity domain.Identity) (models.Timestamp, error)

	// GetMany returns the stored timestamps for the identities that have one.
	// Identities without an entry are absent from the result.
	GetMany(ctx context.Context, identities []domain.Identity) (map[domain.Identity]models.Timestamp, error)

	// Put inserts or unconditionally overwrites the entry.
	Put(ctx context.Context, identity domain.Identity, ts models.Timestamp) error

	// PutIfNewer inserts, or overwrites only when ts is not older than the
	// stored value. Returns sentinel.ErrStale when a newer value is stored.
	PutIfNewer(ctx context.Context, identity domain.Identity, ts models.Timestamp) error
}

// InteractionPublisher delivers interaction records to external observers.
type InteractionPublisher interface {
	Publish(ctx context.Context, record models.InteractionRecord) error
}

// LogAudit is a shared helper for logging security-relevant attestation
// events with a consistent shape.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	if agent := requestcontext.ClientAgent(ctx); agent != "" {
		attrs = append(attrs, "client_agent", agent)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}
