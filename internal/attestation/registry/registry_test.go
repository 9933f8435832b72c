package registry

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"proofgate/internal/attestation/codec"
	"proofgate/internal/attestation/models"
	"proofgate/internal/attestation/store/memory"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

const window = 60_000 * time.Millisecond

var (
	alice = domain.MustParseIdentity("0x" + strings.Repeat("a1", domain.IdentityLen))
	bob   = domain.MustParseIdentity("0x" + strings.Repeat("b2", domain.IdentityLen))
)

func at(ms int64) time.Time {
	return models.Timestamp(ms).Time()
}

type RegistrySuite struct {
	suite.Suite
	ctx        context.Context
	oraclePub  ed25519.PublicKey
	oracleKey  ed25519.PrivateKey
	store      *memory.InMemoryStore
	registry   *Registry
	verifier   *Verifier
	lenient    *Verifier
	newestWins *Verifier
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.oraclePub, s.oracleKey, err = ed25519.GenerateKey(nil)
	s.Require().NoError(err)

	s.store = memory.NewInMemoryStore()
	s.registry, err = New(window, s.store)
	s.Require().NoError(err)

	s.verifier, err = NewVerifier(s.oraclePub)
	s.Require().NoError(err)
	s.lenient, err = NewVerifier(s.oraclePub, WithBinding(BindToCaller))
	s.Require().NoError(err)
	s.newestWins, err = NewVerifier(s.oraclePub, WithWritePolicy(NewestWins))
	s.Require().NoError(err)
}

func (s *RegistrySuite) attest(identity domain.Identity, ms int64) models.Attestation {
	msg, err := codec.Encode(identity, models.Timestamp(ms))
	s.Require().NoError(err)
	return s.signRaw(msg)
}

func (s *RegistrySuite) signRaw(msg []byte) models.Attestation {
	return models.Attestation{
		Message:   msg,
		Signature: ed25519.Sign(s.oracleKey, msg),
		PublicKey: s.oraclePub,
	}
}

func (s *RegistrySuite) TestNew_RejectsBadConfiguration() {
	_, err := New(0, s.store)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = New(window, nil)
	s.Error(err)

	_, err = NewVerifier(ed25519.PublicKey{1, 2, 3})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	s.Equal(window, s.registry.ValidityWindow())
}

func (s *RegistrySuite) TestAttempt_NeverSubmittedIsNotYetVerified() {
	_, err := Attempt(s.ctx, s.registry, at(1_000_000), alice)
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrNotYetVerified)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *RegistrySuite) TestSubmitThenAttempt_RecordCarriesTrustedTime() {
	ts, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1_000_000), alice)
	s.Require().NoError(err)
	s.Equal(models.Timestamp(1_000_000), ts)

	record, err := Attempt(s.ctx, s.registry, at(1_000_500), alice)
	s.Require().NoError(err)
	s.Equal(models.InteractionRecord{Identity: alice, Timestamp: 1_000_500}, record)
}

func (s *RegistrySuite) TestWindowScenario() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1_000_000), alice)
	s.Require().NoError(err)

	stored, err := s.store.Get(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(models.Timestamp(1_000_000), stored)

	s.Run("inside the window", func() {
		record, err := Attempt(s.ctx, s.registry, at(1_059_999), alice)
		s.Require().NoError(err)
		s.Equal(models.Timestamp(1_059_999), record.Timestamp)
		s.Equal(alice, record.Identity)
	})

	s.Run("exactly one window old is inclusive", func() {
		_, err := Attempt(s.ctx, s.registry, at(1_060_000), alice)
		s.NoError(err)
	})

	s.Run("one millisecond past the window", func() {
		_, err := Attempt(s.ctx, s.registry, at(1_060_001), alice)
		s.ErrorIs(err, models.ErrVerificationExpired)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *RegistrySuite) TestExpiredThenResubmittedIsFresh() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1_000_000), alice)
	s.Require().NoError(err)

	_, err = Attempt(s.ctx, s.registry, at(2_000_000), alice)
	s.Require().ErrorIs(err, models.ErrVerificationExpired)

	_, err = s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1_990_000), alice)
	s.Require().NoError(err)

	_, err = Attempt(s.ctx, s.registry, at(2_000_000), alice)
	s.NoError(err)
}

func (s *RegistrySuite) TestSubmit_InvalidSignatureLeavesRegistryUnchanged() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 500), alice)
	s.Require().NoError(err)
	before := s.store.Snapshot()

	otherPub, otherKey, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	good := s.attest(alice, 1_000_000)

	foreign := good
	foreign.PublicKey = otherPub
	foreign.Signature = ed25519.Sign(otherKey, good.Message)

	tamperedMsg := good
	tamperedMsg.Message = append([]byte(nil), good.Message...)
	tamperedMsg.Message[len(tamperedMsg.Message)-1] = '9'

	tamperedSig := good
	tamperedSig.Signature = append([]byte(nil), good.Signature...)
	tamperedSig.Signature[0] ^= 0xff

	shortKey := good
	shortKey.PublicKey = good.PublicKey[:16]

	shortSig := good
	shortSig.Signature = good.Signature[:10]

	cases := map[string]models.Attestation{
		"signed by a different key": foreign,
		"message altered":           tamperedMsg,
		"signature altered":         tamperedSig,
		"truncated public key":      shortKey,
		"truncated signature":       shortSig,
		"empty attestation":         {},
	}
	for name, att := range cases {
		s.Run(name, func() {
			_, err := s.verifier.Submit(s.ctx, s.registry, att, alice)
			s.ErrorIs(err, models.ErrInvalidSignature)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
			s.Equal(before, s.store.Snapshot())
		})
	}
}

func (s *RegistrySuite) TestSubmit_MalformedMessageLeavesRegistryUnchanged() {
	before := s.store.Snapshot()

	att := s.signRaw([]byte(alice.String() + "00000010000x0"))
	_, err := s.verifier.Submit(s.ctx, s.registry, att, alice)
	s.ErrorIs(err, models.ErrMalformedAttestation)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	short := s.signRaw([]byte("123"))
	_, err = s.lenient.Submit(s.ctx, s.registry, short, alice)
	s.ErrorIs(err, models.ErrMalformedAttestation)

	s.Equal(before, s.store.Snapshot())
}

func (s *RegistrySuite) TestSubmit_IsIdempotent() {
	att := s.attest(alice, 1_000_000)

	_, err := s.verifier.Submit(s.ctx, s.registry, att, alice)
	s.Require().NoError(err)
	once := s.store.Snapshot()

	_, err = s.verifier.Submit(s.ctx, s.registry, att, alice)
	s.Require().NoError(err)
	s.Equal(once, s.store.Snapshot())
}

func (s *RegistrySuite) TestSubmit_IdentityBinding() {
	aliceAtt := s.attest(alice, 1_000_000)

	s.Run("strict binding rejects another identity's attestation", func() {
		_, err := s.verifier.Submit(s.ctx, s.registry, aliceAtt, bob)
		s.ErrorIs(err, models.ErrIdentityMismatch)
		_, err = s.store.Get(s.ctx, bob)
		s.Error(err, "bob must not gain an entry")
	})

	s.Run("caller binding records the replayed attestation for the submitter", func() {
		_, err := s.lenient.Submit(s.ctx, s.registry, aliceAtt, bob)
		s.Require().NoError(err)
		_, err = Attempt(s.ctx, s.registry, at(1_000_001), bob)
		s.NoError(err)
	})
}

func (s *RegistrySuite) TestSubmit_WritePolicies() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 2_000_000), alice)
	s.Require().NoError(err)
	older := s.attest(alice, 1_000_000)

	s.Run("newest-wins refuses an older timestamp", func() {
		_, err := s.newestWins.Submit(s.ctx, s.registry, older, alice)
		s.ErrorIs(err, models.ErrStaleAttestation)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		ts, _ := s.store.Get(s.ctx, alice)
		s.Equal(models.Timestamp(2_000_000), ts)
	})

	s.Run("overwrite accepts an older timestamp", func() {
		_, err := s.verifier.Submit(s.ctx, s.registry, older, alice)
		s.Require().NoError(err)
		ts, _ := s.store.Get(s.ctx, alice)
		s.Equal(models.Timestamp(1_000_000), ts)
	})
}

func (s *RegistrySuite) TestSubmit_RequiresCaller() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1), domain.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = Attempt(s.ctx, s.registry, at(1), domain.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *RegistrySuite) TestStatus() {
	_, err := s.verifier.Submit(s.ctx, s.registry, s.attest(alice, 1_000_000), alice)
	s.Require().NoError(err)

	st, err := s.registry.Status(s.ctx, at(1_000_001), alice)
	s.Require().NoError(err)
	s.Equal(models.StateFresh, st.State)
	s.Equal(models.Timestamp(1_060_000), st.ExpiresAt)

	st, err = s.registry.Status(s.ctx, at(1_060_001), alice)
	s.Require().NoError(err)
	s.Equal(models.StateExpired, st.State)

	many, err := s.registry.StatusMany(s.ctx, at(1_000_001), []domain.Identity{bob, alice})
	s.Require().NoError(err)
	s.Require().Len(many, 2)
	s.Equal(models.StateUnverified, many[0].State)
	s.Equal(models.StateFresh, many[1].State)
}

type failingStore struct{ memory.InMemoryStore }

var errBackend = errors.New("backend down")

func (*failingStore) Get(context.Context, domain.Identity) (models.Timestamp, error) {
	return 0, errBackend
}

func (*failingStore) Put(context.Context, domain.Identity, models.Timestamp) error {
	return errBackend
}

func TestStoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()
	pub, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	reg, err := New(window, &failingStore{})
	require.NoError(t, err)
	v, err := NewVerifier(pub)
	require.NoError(t, err)

	msg, err := codec.Encode(alice, 1)
	require.NoError(t, err)
	_, err = v.Submit(ctx, reg, models.Attestation{Message: msg, Signature: ed25519.Sign(key, msg), PublicKey: pub}, alice)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.ErrorIs(t, err, errBackend)

	_, err = Attempt(ctx, reg, at(1), alice)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
