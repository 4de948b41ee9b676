package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:  http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeAlreadyExists: http.StatusConflict,
		CodeInternal:      http.StatusInternalServerError,
		Code("OTHER"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus(), code)
	}
}

func TestFrom_UnwrapsChain(t *testing.T) {
	wrapped := errors.Wrap(NotFound("risk"), "load risk 7")

	got := From(wrapped)

	require.NotNil(t, got)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.Equal(t, "risk not found", got.Message)
	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeInternal))
}

func TestFrom_PlainErrorIsInternal(t *testing.T) {
	cause := errors.New("connection reset")

	got := From(cause)

	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "internal server error", got.Message)
	assert.Equal(t, cause, got.Unwrap())
	assert.Nil(t, From(nil))
}
