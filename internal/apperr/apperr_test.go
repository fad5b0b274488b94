package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("finalize: %w", InvalidState("Checkout not paid"))

	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Equal(t, "Checkout not paid", Message(err))
	assert.Equal(t, http.StatusBadRequest, KindOf(err).Status())
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("socket closed")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Server error", Message(err))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalKeepsDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server error: connection refused", err.Error())
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).Status())
}

func TestStatusPerKind(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindInvalidInput: http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}
