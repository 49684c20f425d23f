package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{InvalidCredentials("bad"), http.StatusBadRequest},
		{InvalidReference("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{InsufficientStock("none"), http.StatusBadRequest},
		{InvalidState("empty"), http.StatusBadRequest},
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{InvalidToken("bad token"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("cart: add: %w", NotFound("Product not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "Product not found", Message(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "find user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "find user: connection reset", err.Error())
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestCauseReportsWrappedError(t *testing.T) {
	cause := errors.New("connection reset by peer")

	assert.Equal(t, "connection reset by peer", Cause(Wrap(KindInternal, "An error occurred", cause)))
	assert.Equal(t, "connection reset by peer", Cause(fmt.Errorf("save cart: %w", Wrap(KindInternal, "Server error", cause))))
	assert.Equal(t, "Cart is empty", Cause(InvalidState("Cart is empty")))
	assert.Equal(t, "boom", Cause(errors.New("boom")))
}
