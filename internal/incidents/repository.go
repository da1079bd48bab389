package incidents

import (
	"context"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
)

// Repository defines the interface for incident storage.
// Writes persist the incident, its service links and its messages atomically.
// Messages are append-only: UpdateIncident stores messages it has not seen
// and never rewrites existing ones.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncident(ctx context.Context, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, filter Filter) ([]*domain.Incident, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
}

// State selects incidents by their end date.
type State int

// Incident states.
const (
	StateAll State = iota
	// StateCurrent matches incidents without an end date or ending after Now.
	StateCurrent
	// StatePast matches incidents that ended at or before Now.
	StatePast
)

// Filter holds filter options for listing incidents.
type Filter struct {
	ServiceID string
	State     State
	Now       time.Time
}

// ServiceResolver checks service references.
type ServiceResolver interface {
	MissingServiceIDs(ctx context.Context, ids []string) ([]string, error)
}
