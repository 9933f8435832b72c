package attestation

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attestationhandler "proofgate/internal/attestation/handler"
	attestationmetrics "proofgate/internal/attestation/metrics"
	"proofgate/internal/attestation/models"
	memorypublisher "proofgate/internal/attestation/publisher/memory"
	"proofgate/internal/attestation/registry"
	attestationservice "proofgate/internal/attestation/service"
	memorystore "proofgate/internal/attestation/store/memory"
	jwttoken "proofgate/internal/jwt_token"
	"proofgate/internal/oracle/challenge"
	oraclehandler "proofgate/internal/oracle/handler"
	oracleservice "proofgate/internal/oracle/service"
	"proofgate/internal/oracle/signer"
	"proofgate/internal/platform/metrics"
	httptransport "proofgate/internal/transport/http"
	"proofgate/pkg/domain"
	"proofgate/pkg/testutil"
)

const window = 60 * time.Second

var (
	alice = domain.MustParseIdentity("0x" + strings.Repeat("a1", domain.IdentityLen))
	bob   = domain.MustParseIdentity("0x" + strings.Repeat("b2", domain.IdentityLen))
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(ms)
}

type harness struct {
	router    http.Handler
	clock     *clock
	publisher *memorypublisher.Publisher
	tokens    *jwttoken.JWTService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	c := &clock{}

	oracleSigner, err := signer.Generate()
	require.NoError(t, err)
	oracle, err := oracleservice.New(challenge.Static{}, oracleSigner)
	require.NoError(t, err)

	registryHandle, err := registry.New(window, memorystore.NewInMemoryStore())
	require.NoError(t, err)
	verifier, err := registry.NewVerifier(oracleSigner.PublicKey())
	require.NoError(t, err)
	publisher := memorypublisher.NewPublisher(100)
	attestations, err := attestationservice.New(registryHandle, verifier, publisher,
		attestationservice.WithMetrics(attestationmetrics.NewWithRegisterer(reg)))
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("integration-key", "proofgate", "proofgate")
	router := httptransport.NewRouter(httptransport.Config{
		Logger:   logger,
		Metrics:  metrics.NewWithRegisterer(reg),
		Clock:    c.Now,
		Gatherer: reg,
		Modules: []httptransport.Registrar{
			attestationhandler.New(attestations, logger, tokens.AsValidator()),
			oraclehandler.New(oracle, logger),
		},
	})
	return &harness{router: router, clock: c, publisher: publisher, tokens: tokens}
}

func (h *harness) bearer(t *testing.T, identity domain.Identity) string {
	t.Helper()
	token, err := h.tokens.GenerateAccessToken(identity, time.Hour)
	require.NoError(t, err)
	return token
}

func (h *harness) attest(t *testing.T, identity domain.Identity) *oraclehandler.AttestResponse {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/oracle/attest",
		map[string]string{"token": "solved", "identity": identity.String()})
	rr := testutil.DoRequest(h.router, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return testutil.UnmarshalResponse[oraclehandler.AttestResponse](t, rr)
}

func (h *harness) submit(t *testing.T, caller domain.Identity, att *oraclehandler.AttestResponse) int {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/attestations", att)
	testutil.WithBearer(req, h.bearer(t, caller))
	return testutil.DoRequest(h.router, req).Code
}

func (h *harness) interact(t *testing.T, caller domain.Identity) (int, map[string]any) {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodPost, "/interact")
	testutil.WithBearer(req, h.bearer(t, caller))
	rr := testutil.DoRequest(h.router, req)
	body := testutil.UnmarshalResponse[map[string]any](t, rr)
	return rr.Code, *body
}

func TestAttestationFlow(t *testing.T) {
	h := newHarness(t)

	testutil.Given(t, "a caller who never verified", func(t *testing.T) {
		h.clock.Set(500_000)
		status, body := h.interact(t, alice)

		testutil.Then(t, "the gate reports not_yet_verified", func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "not_yet_verified", body["reason"])
		})
	})

	testutil.Given(t, "an attestation issued at 1,000,000ms", func(t *testing.T) {
		h.clock.Set(1_000_000)
		att := h.attest(t, alice)
		require.Equal(t, http.StatusNoContent, h.submit(t, alice, att))

		testutil.When(t, "interacting at the window's edge", func(t *testing.T) {
			h.clock.Set(1_060_000)
			status, body := h.interact(t, alice)

			testutil.Then(t, "the interaction is allowed and stamped with server time", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, status)
				assert.Equal(t, alice.String(), body["identity"])
				assert.EqualValues(t, 1_060_000, body["timestamp"])
			})
		})

		testutil.When(t, "interacting one millisecond later", func(t *testing.T) {
			h.clock.Set(1_060_001)
			status, body := h.interact(t, alice)

			testutil.Then(t, "the verification has expired", func(t *testing.T) {
				assert.Equal(t, http.StatusForbidden, status)
				assert.Equal(t, "verification_expired", body["reason"])
			})
		})

		testutil.When(t, "another caller replays the attestation", func(t *testing.T) {
			status := h.submit(t, bob, att)

			testutil.Then(t, "it is refused", func(t *testing.T) {
				assert.Equal(t, http.StatusForbidden, status)
			})
		})
	})

	testutil.Given(t, "an expired caller who re-verifies", func(t *testing.T) {
		h.clock.Set(2_000_000)
		require.Equal(t, http.StatusNoContent, h.submit(t, alice, h.attest(t, alice)))

		h.clock.Set(2_000_001)
		status, _ := h.interact(t, alice)

		testutil.Then(t, "the gate opens again", func(t *testing.T) {
			assert.Equal(t, http.StatusOK, status)
		})

		testutil.Then(t, "the public status reports the fresh entry", func(t *testing.T) {
			rr := testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, "/registry/status/"+alice.String()))
			require.Equal(t, http.StatusOK, rr.Code)
			testutil.AssertJSONContains(t, rr, "state", "fresh")
		})
	})

	testutil.Then(t, "exactly one record is emitted per allowed interaction", func(t *testing.T) {
		assert.Equal(t, []models.InteractionRecord{
			{Identity: alice, Timestamp: 1_060_000},
			{Identity: alice, Timestamp: 2_000_001},
		}, h.publisher.Records())
	})
}
