package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the public HTTP server. WriteTimeout sits above the router's
// request timeout so handlers can still write their timeout response.
// net/http's own errors (TLS handshakes, bad headers) go to logger at warn.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    16 << 10,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}
