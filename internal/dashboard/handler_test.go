package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(newFixtureBoard(), renderer).RegisterRoutes(r)
	return r
}

func TestHandler_Pages(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{name: "index", path: "/", status: http.StatusOK, contains: "API"},
		{name: "service", path: "/services/api", status: http.StatusOK, contains: "Outage"},
		{name: "unknown service", path: "/services/nope", status: http.StatusNotFound, contains: "Service not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
