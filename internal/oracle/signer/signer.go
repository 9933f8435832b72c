// Package signer holds the oracle's Ed25519 key and produces attestations.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"proofgate/internal/attestation/codec"
	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// Signer signs codec messages with the oracle key.
type Signer struct {
	key ed25519.PrivateKey
}

// New builds a signer from a 32-byte Ed25519 seed.
func New(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "oracle signing seed must be 32 bytes")
	}
	return &Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// FromHexSeed builds a signer from a hex-encoded seed, with or without 0x.
func FromHexSeed(s string) (*Signer, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "oracle signing seed must be hex encoded")
	}
	return New(seed)
}

// Generate creates a signer with a random key, for development.
func Generate() (*Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// PublicKey returns the key verifiers must be configured with.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Identity is the oracle's own account identity.
func (s *Signer) Identity() domain.Identity {
	return domain.DeriveIdentity(s.PublicKey())
}

// Sign encodes (identity, ts) and signs the resulting message.
func (s *Signer) Sign(identity domain.Identity, ts models.Timestamp) (models.Attestation, error) {
	msg, err := codec.Encode(identity, ts)
	if err != nil {
		return models.Attestation{}, err
	}
	return models.Attestation{
		Message:   msg,
		Signature: ed25519.Sign(s.key, msg),
		PublicKey: s.PublicKey(),
	}, nil
}
