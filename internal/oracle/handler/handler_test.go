package handler

import (
	"crypto/ed25519"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/oracle/challenge"
	oracleservice "proofgate/internal/oracle/service"
	"proofgate/internal/oracle/signer"
	"proofgate/pkg/domain"
	"proofgate/pkg/testutil"
)

var aliceHex = "0x" + strings.Repeat("a1", domain.IdentityLen)

func newRouter(t *testing.T, verifier challenge.Verifier) (chi.Router, *signer.Signer) {
	t.Helper()
	s, err := signer.Generate()
	require.NoError(t, err)
	svc, err := oracleservice.New(verifier, s)
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r, s
}

func TestHandleAttest(t *testing.T) {
	testutil.Given(t, "a solved challenge", func(t *testing.T) {
		router, s := newRouter(t, challenge.Static{})
		req := testutil.NewJSONRequest(t, http.MethodPost, "/oracle/attest",
			map[string]string{"token": "solved", "identity": aliceHex})
		req = testutil.WithTime(req, time.UnixMilli(42))

		rr := testutil.DoRequest(router, req)

		testutil.Then(t, "a verifiable attestation for the identity is returned", func(t *testing.T) {
			testutil.AssertStatusOK(t, rr)
			resp := testutil.UnmarshalResponse[AttestResponse](t, rr)

			msg, err := hex.DecodeString(resp.Message)
			require.NoError(t, err)
			sig, err := hex.DecodeString(resp.Signature)
			require.NoError(t, err)
			pub, err := hex.DecodeString(resp.PublicKey)
			require.NoError(t, err)

			assert.Equal(t, aliceHex+"0000000000042", string(msg))
			assert.Equal(t, []byte(s.PublicKey()), pub)
			assert.True(t, ed25519.Verify(pub, msg, sig))
		})
	})

	testutil.Given(t, "a rejected challenge", func(t *testing.T) {
		router, _ := newRouter(t, challenge.Static{Reject: true})
		req := testutil.NewJSONRequest(t, http.MethodPost, "/oracle/attest",
			map[string]string{"token": "nope", "identity": aliceHex})

		rr := testutil.DoRequest(router, req)

		testutil.Then(t, "the request is forbidden with a reason", func(t *testing.T) {
			testutil.AssertReason(t, rr, http.StatusForbidden, "challenge_rejected")
		})
	})

	testutil.Given(t, "a malformed identity", func(t *testing.T) {
		router, _ := newRouter(t, challenge.Static{})
		req := testutil.NewJSONRequest(t, http.MethodPost, "/oracle/attest",
			map[string]string{"token": "solved", "identity": "alice"})

		rr := testutil.DoRequest(router, req)

		testutil.Then(t, "the request is rejected before the challenge", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
		})
	})

	testutil.Given(t, "a missing token", func(t *testing.T) {
		router, _ := newRouter(t, challenge.Static{})
		req := testutil.NewJSONRequest(t, http.MethodPost, "/oracle/attest",
			map[string]string{"identity": aliceHex})

		rr := testutil.DoRequest(router, req)

		testutil.Then(t, "it is a validation error", func(t *testing.T) {
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		})
	})
}
