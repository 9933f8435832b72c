package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/attestation/codec"
	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

var alice = domain.MustParseIdentity("0x" + strings.Repeat("a1", domain.IdentityLen))

func TestFromHexSeed(t *testing.T) {
	seed := strings.Repeat("07", ed25519.SeedSize)

	t.Run("same seed gives same key", func(t *testing.T) {
		a, err := FromHexSeed(seed)
		require.NoError(t, err)
		b, err := FromHexSeed("0x" + seed)
		require.NoError(t, err)
		assert.Equal(t, a.PublicKey(), b.PublicKey())
		assert.Equal(t, domain.DeriveIdentity(a.PublicKey()), a.Identity())
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		_, err := FromHexSeed("not-hex")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := FromHexSeed(hex.EncodeToString([]byte("short")))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestSign(t *testing.T) {
	s, err := Generate()
	require.NoError(t, err)

	att, err := s.Sign(alice, 1_700_000_000_000)
	require.NoError(t, err)

	assert.Equal(t, []byte(alice.String()+"1700000000000"), att.Message)
	assert.True(t, ed25519.Verify(s.PublicKey(), att.Message, att.Signature))

	ts, err := codec.DecodeTimestamp(att.Message)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(1_700_000_000_000), ts)

	_, err = s.Sign(alice, -1)
	assert.ErrorIs(t, err, models.ErrMalformedAttestation)
}
