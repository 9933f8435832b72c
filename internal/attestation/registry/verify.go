package registry

import (
	"context"
	"crypto/ed25519"
	"crypto/subtle"
	"errors"

	"proofgate/internal/attestation/codec"
	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/sentinel"
)

// BindingPolicy decides which identity a verified attestation is recorded for.
type BindingPolicy int

const (
	// BindToCaller records the attestation for the submitting identity and
	// ignores the identity inside the message. Any caller holding a valid
	// oracle signature can replay it onto their own entry.
	BindToCaller BindingPolicy = iota
	// BindToMessage additionally requires the message identity to equal the
	// submitting identity.
	BindToMessage
)

// WritePolicy decides how a new timestamp replaces an existing one.
type WritePolicy int

const (
	// Overwrite replaces the stored timestamp unconditionally; concurrent
	// writes are last-committed-wins.
	Overwrite WritePolicy = iota
	// NewestWins refuses to move an entry backwards in time.
	NewestWins
)

// Verifier admits oracle attestations into a Registry.
type Verifier struct {
	oracleKey ed25519.PublicKey
	binding   BindingPolicy
	write     WritePolicy
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithBinding sets the identity binding policy (default BindToMessage).
func WithBinding(p BindingPolicy) VerifierOption {
	return func(v *Verifier) {
		v.binding = p
	}
}

// WithWritePolicy sets the overwrite policy (default Overwrite).
func WithWritePolicy(p WritePolicy) VerifierOption {
	return func(v *Verifier) {
		v.write = p
	}
}

// NewVerifier creates a verifier trusting exactly oracleKey.
func NewVerifier(oracleKey ed25519.PublicKey, opts ...VerifierOption) (*Verifier, error) {
	if len(oracleKey) != ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "oracle public key must be 32 bytes")
	}
	v := &Verifier{
		oracleKey: append(ed25519.PublicKey(nil), oracleKey...),
		binding:   BindToMessage,
		write:     Overwrite,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// OracleKey returns a copy of the trusted oracle key.
func (v *Verifier) OracleKey() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), v.oracleKey...)
}

// Submit validates att and records its timestamp for caller. Every failure
// happens before the single store write, so a failed call leaves the
// registry untouched. Returns the recorded timestamp.
func (v *Verifier) Submit(ctx context.Context, reg *Registry, att models.Attestation, caller domain.Identity) (models.Timestamp, error) {
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if !v.signatureValid(att) {
		return 0, models.Coded(models.ErrInvalidSignature)
	}

	ts, err := codec.DecodeTimestamp(att.Message)
	if err != nil {
		return 0, models.Coded(models.ErrMalformedAttestation)
	}

	if v.binding == BindToMessage {
		subject, err := codec.DecodeIdentity(att.Message)
		if err != nil {
			return 0, models.Coded(models.ErrMalformedAttestation)
		}
		if subject != caller {
			return 0, models.Coded(models.ErrIdentityMismatch)
		}
	}

	if err := v.record(ctx, reg, caller, ts); err != nil {
		return 0, err
	}
	return ts, nil
}

// signatureValid checks key identity before touching ed25519, which panics
// on wrongly sized keys.
func (v *Verifier) signatureValid(att models.Attestation) bool {
	if len(att.PublicKey) != ed25519.PublicKeySize || len(att.Signature) != ed25519.SignatureSize {
		return false
	}
	if subtle.ConstantTimeCompare(att.PublicKey, v.oracleKey) != 1 {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(att.PublicKey), att.Message, att.Signature)
}

func (v *Verifier) record(ctx context.Context, reg *Registry, caller domain.Identity, ts models.Timestamp) error {
	switch v.write {
	case NewestWins:
		err := reg.store.PutIfNewer(ctx, caller, ts)
		if errors.Is(err, sentinel.ErrStale) {
			return models.Coded(models.ErrStaleAttestation)
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attestation")
		}
	default:
		if err := reg.store.Put(ctx, caller, ts); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attestation")
		}
	}
	return nil
}
