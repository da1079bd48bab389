package incidents

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/google/uuid"
)

// mockRepository implements Repository in memory.
type mockRepository struct {
	mu        sync.Mutex
	incidents map[string]*domain.Incident
	order     []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{incidents: make(map[string]*domain.Incident)}
}

func clone(inc *domain.Incident) *domain.Incident {
	c := *inc
	c.ServiceIDs = slices.Clone(inc.ServiceIDs)
	c.Messages = slices.Clone(inc.Messages)
	if inc.EndDate != nil {
		end := *inc.EndDate
		c.EndDate = &end
	}
	return &c
}

func (m *mockRepository) CreateIncident(_ context.Context, incident *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	incident.ID = uuid.NewString()
	incident.CreatedAt = time.Now().UTC()
	incident.UpdatedAt = incident.CreatedAt
	m.incidents[incident.ID] = clone(incident)
	m.order = append(m.order, incident.ID)
	return nil
}

func (m *mockRepository) GetIncident(_ context.Context, id string) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return clone(inc), nil
}

func (m *mockRepository) ListIncidents(_ context.Context, filter Filter) ([]*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*domain.Incident, 0)
	for _, id := range m.order {
		inc := m.incidents[id]
		if filter.ServiceID != "" && !inc.AffectsService(filter.ServiceID) {
			continue
		}
		switch filter.State {
		case StateCurrent:
			if !inc.IsCurrent(filter.Now) {
				continue
			}
		case StatePast:
			if inc.IsCurrent(filter.Now) {
				continue
			}
		}
		list = append(list, clone(inc))
	}
	slices.SortStableFunc(list, func(a, b *domain.Incident) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return list, nil
}

// UpdateIncident keeps stored messages and appends the unseen ones.
func (m *mockRepository) UpdateIncident(_ context.Context, incident *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.incidents[incident.ID]
	if !ok {
		return ErrIncidentNotFound
	}

	updated := clone(incident)
	updated.Messages = slices.Clone(stored.Messages)
	for _, msg := range incident.Messages {
		if !slices.ContainsFunc(updated.Messages, func(s domain.Message) bool { return s.ID == msg.ID }) {
			updated.Messages = append(updated.Messages, msg)
		}
	}
	updated.SortMessages()
	m.incidents[incident.ID] = updated
	return nil
}

// mockResolver knows a fixed set of service ids.
type mockResolver struct {
	known []string
	calls int
}

func (m *mockResolver) MissingServiceIDs(_ context.Context, ids []string) ([]string, error) {
	m.calls++
	missing := make([]string, 0)
	for _, id := range ids {
		if !slices.Contains(m.known, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
