package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading: %w", NotFound("project not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:    http.StatusBadRequest,
		KindUnauthorized:  http.StatusUnauthorized,
		KindForbidden:     http.StatusForbidden,
		KindNotFound:      http.StatusNotFound,
		KindAlreadyExists: http.StatusConflict,
		KindConflict:      http.StatusConflict,
		KindInternal:      http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}

	assert.Equal(t, KindNotFound, FromStatus(http.StatusNotFound))
	assert.Equal(t, KindInternal, FromStatus(http.StatusBadGateway))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("already_exists")
	assert.True(t, ok)
	assert.Equal(t, KindAlreadyExists, k)

	_, ok = ParseKind("teapot")
	assert.False(t, ok)
	_, ok = ParseKind("")
	assert.False(t, ok)
}
