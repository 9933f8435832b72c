package testutil

import (
	"net/http"
	"time"

	"proofgate/pkg/requestcontext"
)

// WithTime pins the request's trusted time, as the requesttime middleware would.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
