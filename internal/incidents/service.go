package incidents

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/pkg/ctxlog"
	"github.com/bissquit/whiskerboard/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Config controls incident validation policy.
type Config struct {
	// ValidateServiceRefs rejects service ids that match no service.
	// When false, unknown ids are stored as forward references.
	ValidateServiceRefs bool
}

// Service implements incident business logic.
type Service struct {
	repo     Repository
	resolver ServiceResolver
	cfg      Config
	now      func() time.Time
	newID    func() string
}

// NewService creates a new incident service.
func NewService(repo Repository, resolver ServiceResolver, cfg Config) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateIncidentInput holds data for creating an incident with its first message.
type CreateIncidentInput struct {
	ServiceIDs []string
	Title      string
	Message    string
	Status     domain.StatusCode
	StartDate  *time.Time
	// Timestamp of the first message; defaults to now.
	Timestamp *time.Time
}

// UpdateIncidentInput holds a partial incident update. Nil fields are left unchanged.
// Message and Status must be given together and append a new message.
type UpdateIncidentInput struct {
	ServiceIDs *[]string
	Title      *string
	StartDate  *time.Time
	EndDate    *time.Time
	Message    *string
	Status     *domain.StatusCode
	Timestamp  *time.Time
}

// CreateIncident validates and stores a new incident.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	now := s.now().UTC()

	incident := &domain.Incident{
		ServiceIDs: uniqueIDs(input.ServiceIDs),
		Title:      strings.TrimSpace(input.Title),
		StartDate:  now,
	}
	if input.StartDate != nil {
		incident.StartDate = input.StartDate.UTC()
	}

	_, msgErr := incident.AddMessage(s.newID(), normalizeStatus(input.Status), input.Message, timeOrZero(input.Timestamp), now)
	if err := domain.MergeValidation(incident.Validate(), msgErr); err != nil {
		return nil, err
	}

	if err := s.checkServiceRefs(ctx, incident.ServiceIDs); err != nil {
		return nil, err
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	metrics.IncidentsCreated.Inc()
	metrics.MessagesPosted.WithLabelValues(string(incident.Messages[0].Status)).Inc()
	ctxlog.FromContext(ctx).Info("incident created",
		"incident_id", incident.ID,
		"services", len(incident.ServiceIDs),
		"status", incident.Messages[0].Status,
	)

	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIncidentNotFound
	}
	return s.repo.GetIncident(ctx, parsed.String())
}

// ListIncidents retrieves incidents in the given state, newest first.
func (s *Service) ListIncidents(ctx context.Context, state State) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, Filter{State: state, Now: s.now().UTC()})
}

// ListIncidentsByService retrieves incidents affecting serviceID in the given state.
func (s *Service) ListIncidentsByService(ctx context.Context, serviceID string, state State) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, Filter{ServiceID: serviceID, State: state, Now: s.now().UTC()})
}

// UpdateIncident applies a partial update and appends a message when one is given.
// Existing messages are never modified.
func (s *Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput) (*domain.Incident, error) {
	incident, err := s.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	if input.Title != nil {
		incident.Title = strings.TrimSpace(*input.Title)
	}
	if input.StartDate != nil {
		incident.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		incident.EndDate = &end
	}
	if input.ServiceIDs != nil {
		incident.ServiceIDs = uniqueIDs(*input.ServiceIDs)
	}

	var msgErr error
	var added *domain.Message
	switch {
	case input.Message != nil && input.Status != nil:
		added, msgErr = incident.AddMessage(s.newID(), normalizeStatus(*input.Status), *input.Message, timeOrZero(input.Timestamp), now)
	case input.Message != nil:
		msgErr = domain.NewValidationError("status", "a status is required with a message")
	case input.Status != nil:
		msgErr = domain.NewValidationError("message", "a message is required with a status")
	}

	if err := domain.MergeValidation(incident.Validate(), msgErr); err != nil {
		return nil, err
	}

	if input.ServiceIDs != nil {
		if err := s.checkServiceRefs(ctx, incident.ServiceIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}

	if added != nil {
		metrics.MessagesPosted.WithLabelValues(string(added.Status)).Inc()
		ctxlog.FromContext(ctx).Info("incident message added",
			"incident_id", incident.ID,
			"message_id", added.ID,
			"status", added.Status,
		)
	}

	return incident, nil
}

// DeleteIncident is not supported; incidents are closed by setting an end date.
func (s *Service) DeleteIncident(_ context.Context, _ string) error {
	return ErrNotImplemented
}

func (s *Service) checkServiceRefs(ctx context.Context, ids []string) error {
	if !s.cfg.ValidateServiceRefs {
		return nil
	}

	missing, err := s.resolver.MissingServiceIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve services: %w", err)
	}
	if len(missing) > 0 {
		verr := domain.NewValidationError("service_ids", "unknown services: "+strings.Join(missing, ", "))
		return fmt.Errorf("%w: %w", ErrUnknownServices, verr)
	}
	return nil
}

// normalizeStatus lower-cases known codes; unknown codes pass through to fail validation.
func normalizeStatus(code domain.StatusCode) domain.StatusCode {
	if parsed, err := domain.ParseStatus(string(code)); err == nil {
		return parsed
	}
	return code
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
