// Package catalog provides HTTP handlers and business logic for managing services.
package catalog

import (
	"net/http"

	"github.com/bissquit/whiskerboard/internal/pkg/httputil"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: httputil.NewValidator(),
	}
}

// RegisterRoutes registers all HTTP routes for the catalog module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Post("/", h.CreateService)
		r.Get("/{id}", h.GetService)
		r.Put("/{id}", h.UpdateService)
		r.Delete("/{id}", h.DeleteService)
	})
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=120"`
}

// ToInput converts the request to service input.
func (r *CreateServiceRequest) ToInput() CreateServiceInput {
	return CreateServiceInput{
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

// UpdateServiceRequest represents the request body for updating a service.
// Omitted fields are left unchanged. A slug in the body is ignored.
type UpdateServiceRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// ToInput converts the request to service input.
func (r *UpdateServiceRequest) ToInput() UpdateServiceInput {
	return UpdateServiceInput{
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

// ServiceListResponse is the body of GET /services.
type ServiceListResponse struct {
	Services []ServiceView `json:"services"`
}

// ListServices handles GET /services request.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	opts := view.Options{Version: httputil.APIVersion(r)}

	views, err := h.service.ListViews(r.Context(), opts)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ServiceListResponse{Services: views})
}

// CreateService handles POST /services request.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.CreateService(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, CreatedView{
		ID:     service.ID,
		APIURL: view.ServiceAPIURL(httputil.APIVersion(r), service.ID),
	})
}

// GetService handles GET /services/{id} request.
// A non-empty ?past= adds the ids of ended incidents.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.service.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	opts := view.Options{
		Version: httputil.APIVersion(r),
		Detail:  true,
		Past:    httputil.QueryFlag(r, "past"),
	}
	v, err := h.service.View(r.Context(), service, opts)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, v)
}

// UpdateService handles PUT /services/{id} request.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.service.GetService(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req UpdateServiceRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.UpdateService(r.Context(), id, req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	v, err := h.service.View(r.Context(), service, view.Options{
		Version: httputil.APIVersion(r),
		Detail:  true,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, v)
}

// DeleteService handles DELETE /services/{id} request.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrServiceNotFound, Status: http.StatusNotFound, Message: "Object not found."},
		{Error: ErrNotImplemented, Status: http.StatusBadRequest, Message: httputil.NotImplementedMessage},
		{Error: ErrSlugExhausted, Status: http.StatusBadRequest},
	})
}
