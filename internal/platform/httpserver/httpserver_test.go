package httpserver

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.ErrorLog)
	assert.Greater(t, srv.WriteTimeout, srv.ReadTimeout)

	assert.Nil(t, New(":0", http.NotFoundHandler(), nil).ErrorLog)
}
