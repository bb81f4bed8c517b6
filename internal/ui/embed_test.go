package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ServesIndex(t *testing.T) {
	h, err := Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "AutoAbsen")
}

func TestDistFS_ContainsAssets(t *testing.T) {
	sub, err := DistFS()
	require.NoError(t, err)

	for _, name := range []string{"index.html", "app.js", "style.css"} {
		_, err := sub.Open(name)
		assert.NoError(t, err, name)
	}
}
