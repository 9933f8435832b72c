// Package registry is the authoritative store of attestation freshness.
//
// A Registry is created once per deployment and passed explicitly to the
// verifier and the gate. It holds the immutable validity window and a handle
// to the identity → last-attested-at mapping. The mapping is only mutated by
// Verifier.Submit; everything else in this package reads.
package registry

import (
	"context"
	"errors"
	"time"

	"proofgate/internal/attestation/models"
	"proofgate/internal/attestation/ports"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/sentinel"
)

// Registry pairs the validity window with the entry store.
type Registry struct {
	window time.Duration
	store  ports.Store
}

// New creates the registry. The window must be at least one millisecond and
// cannot be changed afterwards.
func New(window time.Duration, store ports.Store) (*Registry, error) {
	if window < time.Millisecond {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "validity window must be at least 1ms")
	}
	if store == nil {
		return nil, errors.New("registry store is required")
	}
	return &Registry{window: window, store: store}, nil
}

// ValidityWindow returns the configured window.
func (r *Registry) ValidityWindow() time.Duration {
	return r.window
}

func (r *Registry) windowMillis() models.Timestamp {
	return models.Timestamp(r.window.Milliseconds())
}

// lookup returns the entry for identity; found is false when none exists.
func (r *Registry) lookup(ctx context.Context, identity domain.Identity) (ts models.Timestamp, found bool, err error) {
	ts, err = r.store.Get(ctx, identity)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read registry entry")
	}
	return ts, true, nil
}

// classify places an entry on the gate's state machine at now. The upper
// bound is inclusive: an entry exactly one window old is still fresh. An
// entry stamped after now (oracle clock ahead of ours) counts as fresh.
func (r *Registry) classify(identity domain.Identity, attestedAt models.Timestamp, found bool, now models.Timestamp) models.EntryStatus {
	if !found {
		return models.EntryStatus{Identity: identity, State: models.StateUnverified}
	}
	status := models.EntryStatus{
		Identity:   identity,
		AttestedAt: attestedAt,
		ExpiresAt:  attestedAt + r.windowMillis(),
		State:      models.StateFresh,
	}
	if now-attestedAt > r.windowMillis() {
		status.State = models.StateExpired
	}
	return status
}

// Status reports where identity stands at now without changing anything.
func (r *Registry) Status(ctx context.Context, now time.Time, identity domain.Identity) (models.EntryStatus, error) {
	ts, found, err := r.lookup(ctx, identity)
	if err != nil {
		return models.EntryStatus{}, err
	}
	return r.classify(identity, ts, found, models.FromTime(now)), nil
}

// StatusMany is Status for a batch, in input order.
func (r *Registry) StatusMany(ctx context.Context, now time.Time, identities []domain.Identity) ([]models.EntryStatus, error) {
	if len(identities) == 0 {
		return nil, nil
	}
	entries, err := r.store.GetMany(ctx, identities)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read registry entries")
	}
	nowTS := models.FromTime(now)
	out := make([]models.EntryStatus, 0, len(identities))
	for _, id := range identities {
		ts, found := entries[id]
		out = append(out, r.classify(id, ts, found, nowTS))
	}
	return out, nil
}
