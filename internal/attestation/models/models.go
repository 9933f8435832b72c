package models

import (
	"time"

	"proofgate/pkg/domain"
)

// Timestamp is milliseconds since the Unix epoch. Attestation messages and
// the trusted clock both speak in this unit.
type Timestamp int64

// FromTime converts a wall-clock time to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts back to a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

// Attestation is the transient triple issued by the oracle and consumed once
// by the verifier. Only its effect (the stored timestamp) persists.
type Attestation struct {
	Message   []byte
	Signature []byte
	PublicKey []byte
}

// InteractionRecord is emitted on every successful gated call. Timestamp is
// the trusted clock's value at the call, not the attestation's timestamp.
type InteractionRecord struct {
	Identity  domain.Identity `json:"identity"`
	Timestamp Timestamp       `json:"timestamp"`
}

// State is an identity's position in the gate's state machine.
type State string

const (
	StateUnverified State = "unverified"
	StateFresh      State = "fresh"
	StateExpired    State = "expired"
)

// EntryStatus is a read-only view of one registry entry at a given time.
type EntryStatus struct {
	Identity   domain.Identity
	State      State
	AttestedAt Timestamp // zero when unverified
	ExpiresAt  Timestamp // zero when unverified
}
