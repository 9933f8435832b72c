package models

import (
	"errors"

	dErrors "proofgate/pkg/domain-errors"
)

// Terminal outcomes of the verifier and gate. Services wrap them in coded
// errors; callers match with errors.Is.
var (
	// ErrInvalidSignature: the public key is not the oracle's key, or the
	// signature does not verify over the message.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedAttestation: the message could not be decoded.
	ErrMalformedAttestation = errors.New("malformed attestation")
	// ErrNotYetVerified: no successful verification on record for the caller.
	ErrNotYetVerified = errors.New("not yet verified")
	// ErrVerificationExpired: the last verification aged out of the window.
	ErrVerificationExpired = errors.New("verification expired")
	// ErrIdentityMismatch: strict binding is on and the message names a
	// different identity than the caller.
	ErrIdentityMismatch = errors.New("identity mismatch")
	// ErrStaleAttestation: monotonic mode is on and a newer timestamp is
	// already recorded.
	ErrStaleAttestation = errors.New("stale attestation")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidSignature, "invalid_signature"},
	{ErrMalformedAttestation, "malformed_attestation"},
	{ErrNotYetVerified, "not_yet_verified"},
	{ErrVerificationExpired, "verification_expired"},
	{ErrIdentityMismatch, "identity_mismatch"},
	{ErrStaleAttestation, "stale_attestation"},
}

// Reason returns the machine-readable reason for a protocol error, or "".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// Coded wraps a protocol sentinel in the domain error carrying its HTTP-facing code.
func Coded(sentinel error) error {
	switch sentinel {
	case ErrInvalidSignature:
		return dErrors.Wrap(sentinel, dErrors.CodeUnauthorized, "attestation signature is not valid for the oracle key")
	case ErrMalformedAttestation:
		return dErrors.Wrap(sentinel, dErrors.CodeBadRequest, "attestation message is malformed")
	case ErrNotYetVerified:
		return dErrors.Wrap(sentinel, dErrors.CodeForbidden, "caller has not passed verification")
	case ErrVerificationExpired:
		return dErrors.Wrap(sentinel, dErrors.CodeForbidden, "caller's verification has expired")
	case ErrIdentityMismatch:
		return dErrors.Wrap(sentinel, dErrors.CodeForbidden, "attestation was issued for a different identity")
	case ErrStaleAttestation:
		return dErrors.Wrap(sentinel, dErrors.CodeConflict, "a newer attestation is already recorded")
	default:
		return dErrors.Wrap(sentinel, dErrors.CodeInternal, "unexpected attestation error")
	}
}
