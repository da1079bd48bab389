package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/incidents"
	"github.com/bissquit/whiskerboard/internal/pkg/ctxlog"
	"github.com/bissquit/whiskerboard/internal/pkg/metrics"
	"github.com/bissquit/whiskerboard/internal/pkg/slug"
	"github.com/bissquit/whiskerboard/internal/pkg/view"
	"github.com/google/uuid"
)

const (
	// fallbackSlug is used for names that slugify to nothing.
	fallbackSlug = "service"
	// maxSlugBaseLength leaves room for a numeric suffix within the column size.
	maxSlugBaseLength = 110
	maxSlugSuffix     = 1000
	maxCreateAttempts = 5
)

// IncidentReader lists incidents affecting a service.
type IncidentReader interface {
	ListIncidentsByService(ctx context.Context, serviceID string, state incidents.State) ([]*domain.Incident, error)
}

// Service implements service catalog business logic.
type Service struct {
	repo      Repository
	incidents IncidentReader
}

// NewService creates a new catalog service.
func NewService(repo Repository, incidents IncidentReader) *Service {
	return &Service{
		repo:      repo,
		incidents: incidents,
	}
}

// CreateServiceInput holds data for creating a service.
type CreateServiceInput struct {
	Name        string
	Description string
	Tags        []string
}

// UpdateServiceInput holds a partial service update. Nil fields are left unchanged.
type UpdateServiceInput struct {
	Name        *string
	Description *string
	Tags        *[]string
}

// ComputeSlug derives a unique slug from name. A slug already owned by the
// service with excludeID counts as available, so re-saving is idempotent.
func (s *Service) ComputeSlug(ctx context.Context, name, excludeID string) (string, error) {
	base := slug.Make(name)
	if len(base) > maxSlugBaseLength {
		base = strings.TrimRight(base[:maxSlugBaseLength], "-")
	}
	if base == "" {
		base = fallbackSlug
	}

	for n := 0; n < maxSlugSuffix; n++ {
		candidate := slug.WithSuffix(base, n)
		existing, err := s.repo.GetServiceBySlug(ctx, candidate)
		if errors.Is(err, ErrServiceNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if excludeID != "" && existing.ID == excludeID {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrSlugExhausted, base)
}

// CreateService validates and stores a new service with a server-assigned slug.
// If another writer takes the computed slug first, the slug is recomputed.
func (s *Service) CreateService(ctx context.Context, input CreateServiceInput) (*domain.Service, error) {
	service := &domain.Service{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Tags:        normalizeTags(input.Tags),
	}
	if err := service.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		candidate, err := s.ComputeSlug(ctx, service.Name, "")
		if err != nil {
			return nil, err
		}
		service.Slug = candidate

		err = s.repo.CreateService(ctx, service)
		if err == nil {
			metrics.ServicesCreated.Inc()
			return service, nil
		}
		if !errors.Is(err, ErrSlugExists) || attempt >= maxCreateAttempts {
			return nil, fmt.Errorf("create service: %w", err)
		}
		ctxlog.FromContext(ctx).Warn("slug taken concurrently, retrying",
			"slug", candidate,
			"attempt", attempt,
		)
	}
}

// GetService retrieves a service by ID.
func (s *Service) GetService(ctx context.Context, id string) (*domain.Service, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrServiceNotFound
	}
	return s.repo.GetServiceByID(ctx, parsed.String())
}

// GetServiceBySlug retrieves a service by slug.
func (s *Service) GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return s.repo.GetServiceBySlug(ctx, slug)
}

// ListServices retrieves all services ordered by name.
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

// UpdateService applies a partial update. The slug assigned at creation is kept.
func (s *Service) UpdateService(ctx context.Context, id string, input UpdateServiceInput) (*domain.Service, error) {
	service, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Tags != nil {
		service.Tags = normalizeTags(*input.Tags)
	}

	if err := service.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return service, nil
}

// DeleteService is not supported; services are never removed.
func (s *Service) DeleteService(_ context.Context, _ string) error {
	return ErrNotImplemented
}

// MissingServiceIDs returns the ids that do not belong to any service.
func (s *Service) MissingServiceIDs(ctx context.Context, ids []string) ([]string, error) {
	return s.repo.MissingServiceIDs(ctx, ids)
}

// CurrentIncidents returns incidents affecting the service that have not ended.
func (s *Service) CurrentIncidents(ctx context.Context, serviceID string) ([]*domain.Incident, error) {
	return s.incidents.ListIncidentsByService(ctx, serviceID, incidents.StateCurrent)
}

// PastIncidents returns incidents affecting the service that have ended.
func (s *Service) PastIncidents(ctx context.Context, serviceID string) ([]*domain.Incident, error) {
	return s.incidents.ListIncidentsByService(ctx, serviceID, incidents.StatePast)
}

// Status returns the worst latest-message status among current incidents,
// or nil when no current incident has a status.
func (s *Service) Status(ctx context.Context, serviceID string) (*domain.StatusCode, error) {
	current, err := s.CurrentIncidents(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list current incidents: %w", err)
	}
	return aggregateStatus(current), nil
}

// View builds the external representation of a service.
func (s *Service) View(ctx context.Context, service *domain.Service, opts view.Options) (*ServiceView, error) {
	current, err := s.CurrentIncidents(ctx, service.ID)
	if err != nil {
		return nil, fmt.Errorf("list current incidents: %w", err)
	}

	var past []*domain.Incident
	if opts.Past {
		past, err = s.PastIncidents(ctx, service.ID)
		if err != nil {
			return nil, fmt.Errorf("list past incidents: %w", err)
		}
	}

	v := NewServiceView(service, aggregateStatus(current), current, past, opts)
	return &v, nil
}

// ListViews builds the external representation of every service.
func (s *Service) ListViews(ctx context.Context, opts view.Options) ([]ServiceView, error) {
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	views := make([]ServiceView, 0, len(services))
	for i := range services {
		v, err := s.View(ctx, &services[i], opts)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func aggregateStatus(current []*domain.Incident) *domain.StatusCode {
	statuses := make([]*domain.StatusCode, 0, len(current))
	for _, inc := range current {
		statuses = append(statuses, inc.Status())
	}
	return domain.WorstStatus(statuses)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
