package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPage(t *testing.T) {
	h, err := NewErrorPageHandler(testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/error?error=state_mismatch", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "state_mismatch")
}

func TestErrorPage_DefaultCode(t *testing.T) {
	h, err := NewErrorPageHandler(testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/error", nil))

	assert.Contains(t, rec.Body.String(), "unknown_error")
}

func TestErrorPage_EscapesProviderInput(t *testing.T) {
	h, err := NewErrorPageHandler(testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/auth/error?error=%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil))

	assert.NotContains(t, rec.Body.String(), "<script>")
}
