// Package incidents provides HTTP handlers and business logic for incidents
// and their message timelines.
package incidents

import (
	"net/http"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/httputil"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: httputil.NewValidator(),
	}
}

// RegisterRoutes registers all HTTP routes for the incidents module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/{id}", h.GetIncident)
		r.Put("/{id}", h.UpdateIncident)
		r.Delete("/{id}", h.DeleteIncident)
		r.Get("/{id}/messages", h.GetIncidentMessages)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	ServiceIDs []string `json:"service_ids" validate:"required,min=1,dive,required"`
	Title      string   `json:"title" validate:"required,max=300"`
	Message    string   `json:"message" validate:"required"`
	Status     string   `json:"status" validate:"required,status"`
	StartDate  *string  `json:"start_date"`
	Timestamp  *string  `json:"timestamp"`
}

// ToInput converts the request to service input.
func (r *CreateIncidentRequest) ToInput() (CreateIncidentInput, error) {
	startDate, startErr := parseOptionalTime("start_date", r.StartDate)
	timestamp, tsErr := parseOptionalTime("timestamp", r.Timestamp)
	if err := domain.MergeValidation(startErr, tsErr); err != nil {
		return CreateIncidentInput{}, err
	}

	return CreateIncidentInput{
		ServiceIDs: r.ServiceIDs,
		Title:      r.Title,
		Message:    r.Message,
		Status:     domain.StatusCode(r.Status),
		StartDate:  startDate,
		Timestamp:  timestamp,
	}, nil
}

// UpdateIncidentRequest represents the request body for updating an incident.
// Omitted fields are left unchanged.
type UpdateIncidentRequest struct {
	ServiceIDs *[]string `json:"service_ids" validate:"omitempty,min=1"`
	Title      *string   `json:"title" validate:"omitempty,min=1,max=300"`
	StartDate  *string   `json:"start_date"`
	EndDate    *string   `json:"end_date"`
	Message    *string   `json:"message" validate:"omitempty,min=1"`
	Status     *string   `json:"status" validate:"omitempty,status"`
	Timestamp  *string   `json:"timestamp"`
}

// ToInput converts the request to service input.
func (r *UpdateIncidentRequest) ToInput() (UpdateIncidentInput, error) {
	startDate, startErr := parseOptionalTime("start_date", r.StartDate)
	endDate, endErr := parseOptionalTime("end_date", r.EndDate)
	timestamp, tsErr := parseOptionalTime("timestamp", r.Timestamp)
	if err := domain.MergeValidation(startErr, endErr, tsErr); err != nil {
		return UpdateIncidentInput{}, err
	}

	input := UpdateIncidentInput{
		ServiceIDs: r.ServiceIDs,
		Title:      r.Title,
		StartDate:  startDate,
		EndDate:    endDate,
		Message:    r.Message,
		Timestamp:  timestamp,
	}
	if r.Status != nil {
		status := domain.StatusCode(*r.Status)
		input.Status = &status
	}
	return input, nil
}

// IncidentListResponse is the body of GET /incidents.
type IncidentListResponse struct {
	Incidents []IncidentView `json:"incidents"`
}

// CreatedView is returned after a successful create.
type CreatedView struct {
	ID     string `json:"id"`
	APIURL string `json:"api_url"`
}

// ListIncidents handles GET /incidents request.
// ?state=current or ?state=past narrows the list.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	var state State
	switch r.URL.Query().Get("state") {
	case "":
		state = StateAll
	case "current":
		state = StateCurrent
	case "past":
		state = StatePast
	default:
		httputil.Error(w, http.StatusBadRequest, "state must be 'current', 'past', or empty")
		return
	}

	var (
		list []*domain.Incident
		err  error
	)
	if serviceID := r.URL.Query().Get("service_id"); serviceID != "" {
		list, err = h.service.ListIncidentsByService(r.Context(), serviceID, state)
	} else {
		list, err = h.service.ListIncidents(r.Context(), state)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	opts := view.Options{Version: httputil.APIVersion(r)}
	httputil.JSON(w, http.StatusOK, IncidentListResponse{Incidents: NewIncidentViews(list, opts)})
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, CreatedView{
		ID:     incident.ID,
		APIURL: view.IncidentAPIURL(httputil.APIVersion(r), incident.ID),
	})
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, NewIncidentView(incident, view.Options{
		Version: httputil.APIVersion(r),
		Detail:  true,
	}))
}

// GetIncidentMessages handles GET /incidents/{id}/messages request.
func (h *Handler) GetIncidentMessages(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, NewIncidentView(incident, view.Options{
		Version:  httputil.APIVersion(r),
		Messages: true,
	}))
}

// UpdateIncident handles PUT /incidents/{id} request.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.service.GetIncident(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req UpdateIncidentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.UpdateIncident(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, NewIncidentView(incident, view.Options{
		Version: httputil.APIVersion(r),
		Detail:  true,
	}))
}

// DeleteIncident handles DELETE /incidents/{id} request.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteIncident(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound, Message: "Object not found."},
		{Error: ErrNotImplemented, Status: http.StatusBadRequest, Message: httputil.NotImplementedMessage},
	})
}

func parseOptionalTime(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := view.ParseTime(*s)
	if err != nil {
		return nil, domain.NewValidationError(field, err.Error())
	}
	return &t, nil
}
