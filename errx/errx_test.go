package errx_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRegistry = errx.NewRegistry("test")
	errNotFound  = testRegistry.Register("THING_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Thing not found")
)

func TestRegistry_PrefixesCodes(t *testing.T) {
	assert.Equal(t, errx.Code("TEST_THING_NOT_FOUND"), errNotFound)

	e := testRegistry.New(errNotFound)
	assert.Equal(t, errx.TypeNotFound, e.Type)
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
	assert.Equal(t, "Thing not found", e.Message)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := errx.NewRegistry("dup")
	r.Register("A", errx.TypeInternal, 500, "a")
	assert.Panics(t, func() { r.Register("A", errx.TypeInternal, 500, "a") })
}

func TestError_CauseAndCode(t *testing.T) {
	cause := errors.New("disk on fire")
	e := testRegistry.NewWithCause(errNotFound, cause).WithDetail("id", 7)

	wrapped := fmt.Errorf("lookup: %w", e)
	assert.True(t, errx.IsCode(wrapped, errNotFound))
	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, errx.IsType(wrapped, errx.TypeNotFound))
	assert.Equal(t, 7, e.Details["id"])
	assert.False(t, errx.IsCode(cause, errNotFound))
}

func TestWrap_KeepsExisting(t *testing.T) {
	e := testRegistry.New(errNotFound)
	assert.Same(t, e, errx.Wrap(e, "ignored", errx.TypeInternal))
	assert.Nil(t, errx.Wrap(nil, "x", errx.TypeInternal))

	w := errx.Wrap(errors.New("boom"), "wrapped", errx.TypeTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, w.Status())
}

func TestError_ToHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	testRegistry.NewWithMessage(errNotFound, "no such thing").WithDetail("id", "x1").ToHTTP(rec)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TEST_THING_NOT_FOUND", body.Error.Code)
	assert.Equal(t, "no such thing", body.Error.Message)
	assert.Equal(t, "x1", body.Error.Details["id"])
}
