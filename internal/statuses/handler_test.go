package statuses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(httputil.MethodNotAllowed)
	r.Route("/api/v{version:[0-9]+}", func(r chi.Router) {
		NewHandler().RegisterRoutes(r)
	})
	return r
}

func TestHandler_ListStatuses(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/statuses", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body StatusListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []domain.StatusCode{
		domain.StatusOK, domain.StatusInfo, domain.StatusWarning, domain.StatusDown,
	}, body.Statuses)
}

func TestHandler_ReadOnly(t *testing.T) {
	h := newTestRouter()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/statuses", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}
