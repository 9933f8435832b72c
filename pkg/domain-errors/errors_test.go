package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errCause = errors.New("cause")

func TestWrap_KeepsCauseReachable(t *testing.T) {
	err := Wrap(errCause, CodeForbidden, "denied")

	assert.True(t, errors.Is(err, errCause))
	assert.True(t, HasCode(err, CodeForbidden))
	assert.Equal(t, "denied: cause", err.Error())
	assert.Equal(t, "denied", MessageOf(err))
}

func TestHasCode_OutermostWins(t *testing.T) {
	inner := New(CodeNotFound, "missing")
	outer := Wrap(inner, CodeInternal, "lookup failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.True(t, HasCode(fmt.Errorf("ctx: %w", outer), CodeInternal))
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errCause))
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "x")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeInvalidInput: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeConflict:     http.StatusConflict,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}
