// Package statuses exposes the fixed status catalog over HTTP.
package statuses

import (
	"net/http"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler serves the status catalog. It is read-only.
type Handler struct{}

// NewHandler creates a new statuses handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers GET /statuses; every other verb answers 405.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/statuses", h.ListStatuses)
}

// StatusListResponse is the body of GET /statuses.
type StatusListResponse struct {
	Statuses []domain.StatusCode `json:"statuses"`
}

// ListStatuses handles GET /statuses request.
func (h *Handler) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, StatusListResponse{Statuses: domain.StatusCodes()})
}
