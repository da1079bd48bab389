package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/incidents"
	"github.com/google/uuid"
)

// mockRepository implements Repository in memory.
type mockRepository struct {
	mu       sync.Mutex
	services []*domain.Service

	// createErrs is consumed by CreateService before storing anything.
	createErrs []error
	creates    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

func (m *mockRepository) CreateService(_ context.Context, service *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, s := range m.services {
		if s.Slug == service.Slug {
			return ErrSlugExists
		}
	}

	service.ID = uuid.NewString()
	service.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	service.UpdatedAt = service.CreatedAt
	stored := *service
	m.services = append(m.services, &stored)
	return nil
}

func (m *mockRepository) GetServiceByID(_ context.Context, id string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.services {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, ErrServiceNotFound
}

func (m *mockRepository) GetServiceBySlug(_ context.Context, slug string) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.services {
		if s.Slug == slug {
			c := *s
			return &c, nil
		}
	}
	return nil, ErrServiceNotFound
}

func (m *mockRepository) ListServices(_ context.Context) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		list = append(list, *s)
	}
	slices.SortStableFunc(list, func(a, b domain.Service) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return list, nil
}

func (m *mockRepository) UpdateService(_ context.Context, service *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.services {
		if s.ID == service.ID {
			c := *service
			m.services[i] = &c
			return nil
		}
	}
	return ErrServiceNotFound
}

func (m *mockRepository) MissingServiceIDs(_ context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	missing := make([]string, 0)
	for _, id := range ids {
		if !slices.ContainsFunc(m.services, func(s *domain.Service) bool { return s.ID == id }) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// mockIncidentReader serves fixed incident lists per service and state.
type mockIncidentReader struct {
	current map[string][]*domain.Incident
	past    map[string][]*domain.Incident
}

func newMockIncidentReader() *mockIncidentReader {
	return &mockIncidentReader{
		current: make(map[string][]*domain.Incident),
		past:    make(map[string][]*domain.Incident),
	}
}

func (m *mockIncidentReader) ListIncidentsByService(_ context.Context, serviceID string, state incidents.State) ([]*domain.Incident, error) {
	switch state {
	case incidents.StateCurrent:
		return m.current[serviceID], nil
	case incidents.StatePast:
		return m.past[serviceID], nil
	default:
		return append(append([]*domain.Incident{}, m.current[serviceID]...), m.past[serviceID]...), nil
	}
}

func incidentWithStatus(id string, statuses ...domain.StatusCode) *domain.Incident {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inc := &domain.Incident{ID: id, ServiceIDs: []string{"svc"}, Title: id, StartDate: base}
	for i, st := range statuses {
		inc.Messages = append(inc.Messages, domain.Message{
			ID:        id + "-m" + string(rune('0'+i)),
			Status:    st,
			Text:      "update",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return inc
}
