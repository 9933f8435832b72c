package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proofgate/internal/platform/metrics"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/platform/middleware/metadata"
	"proofgate/pkg/platform/middleware/request"
	"proofgate/pkg/platform/middleware/requesttime"
)

// requestTimeout bounds every request, including store and broker calls.
const requestTimeout = 30 * time.Second

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Config carries the router's dependencies.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Clock is the trusted time source stamped on every request.
	Clock    requesttime.Clock
	Gatherer prometheus.Gatherer
	Health   map[string]HealthCheck
	Modules  []Registrar
}

// NewRouter wires the shared middleware chain, the operational endpoints and
// every module's routes.
func NewRouter(cfg Config) http.Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.WithClock(clock))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Timeout(requestTimeout))
	r.Use(metrics.LatencyMiddleware(cfg.Metrics))

	r.Get("/health", healthHandler(cfg.Health))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, m := range cfg.Modules {
		if m != nil {
			m.Register(r)
		}
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
