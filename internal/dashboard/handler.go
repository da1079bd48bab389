package dashboard

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/bissquit/whiskerboard/internal/catalog"
	"github.com/bissquit/whiskerboard/internal/pkg/ctxlog"
	"github.com/go-chi/chi/v5"
)

// Handler serves the HTML dashboard.
type Handler struct {
	board    *Board
	renderer *Renderer
}

// NewHandler creates a new dashboard handler.
func NewHandler(board *Board, renderer *Renderer) *Handler {
	return &Handler{
		board:    board,
		renderer: renderer,
	}
}

// RegisterRoutes registers the dashboard pages.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/services/{slug}", h.Service)
}

// Index handles GET / request.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.board.Index(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderIndex(&buf, page); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// Service handles GET /services/{slug} request.
func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	page, err := h.board.Service(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderService(&buf, page); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "Something went wrong."
	if errors.Is(err, catalog.ErrServiceNotFound) {
		status, message = http.StatusNotFound, "Service not found."
	} else {
		ctxlog.FromContext(r.Context()).Error("render dashboard", "error", err)
	}

	var buf bytes.Buffer
	if renderErr := h.renderer.RenderError(&buf, message); renderErr != nil {
		ctxlog.FromContext(r.Context()).Error("render error page", "error", renderErr)
		http.Error(w, message, status)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
