package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/internal/platform/metrics"
	"proofgate/pkg/platform/middleware/request"
	"proofgate/pkg/requestcontext"
	"proofgate/pkg/testutil"
)

type echoModule struct{}

func (echoModule) Register(r chi.Router) {
	r.Get("/echo", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Now", requestcontext.Now(ctx).UTC().Format(time.RFC3339))
		w.Header().Set("X-Agent", requestcontext.ClientAgent(ctx))
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter(health map[string]HealthCheck) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewRouter(Config{
		Logger:   slog.New(slog.DiscardHandler),
		Metrics:  metrics.NewWithRegisterer(reg),
		Clock:    func() time.Time { return fixed },
		Gatherer: reg,
		Health:   health,
		Modules:  []Registrar{echoModule{}},
	}), reg
}

func TestRouter_StampsTrustedTimeAndRequestID(t *testing.T) {
	router, _ := newTestRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/echo"))

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "2026-01-02T03:04:05Z", rr.Header().Get("X-Now"))
	assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
	assert.Equal(t, "unknown", rr.Header().Get("X-Agent"))
}

func TestRouter_RecoversPanics(t *testing.T) {
	router, _ := newTestRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/boom"))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestRouter_Health(t *testing.T) {
	t.Run("healthy dependencies", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"store": func(context.Context) error { return errors.New("down") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(t, rr, "status", "degraded")
	})
}

func TestRouter_RecordsRouteLatency(t *testing.T) {
	router, reg := newTestRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/echo"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() != "proofgate_http_request_duration_seconds" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/echo" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "latency recorded under the route pattern")

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
}
