package catalog

import (
	"context"

	"github.com/bissquit/whiskerboard/internal/domain"
)

// Repository defines the interface for service storage.
// CreateService must fail with ErrSlugExists when the slug is already taken;
// implementations enforce this with a unique index so the check is atomic.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error

	// MissingServiceIDs returns the ids that do not belong to any service.
	MissingServiceIDs(ctx context.Context, ids []string) ([]string, error)
}
