// Package postgres provides PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/whiskerboard/internal/catalog"
	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateService inserts a service. A taken slug yields catalog.ErrSlugExists.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (name, slug, description, tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.Name,
		service.Slug,
		service.Description,
		tagsOrEmpty(service.Tags),
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return catalog.ErrSlugExists
		}
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// GetServiceByID retrieves a service by its ID.
func (r *Repository) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `
		SELECT id, name, slug, description, tags, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	service, err := scanService(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}
	return service, nil
}

// GetServiceBySlug retrieves a service by its slug.
func (r *Repository) GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	query := `
		SELECT id, name, slug, description, tags, created_at, updated_at
		FROM services
		WHERE slug = $1
	`
	service, err := scanService(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service by slug: %w", err)
	}
	return service, nil
}

// ListServices retrieves all services ordered by name.
func (r *Repository) ListServices(ctx context.Context) ([]domain.Service, error) {
	query := `
		SELECT id, name, slug, description, tags, created_at, updated_at
		FROM services
		ORDER BY name, created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// UpdateService updates the mutable fields of a service. The slug is not touched.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		tagsOrEmpty(service.Tags),
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrServiceNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// MissingServiceIDs returns the ids that do not belong to any service, in input order.
func (r *Repository) MissingServiceIDs(ctx context.Context, ids []string) ([]string, error) {
	candidates := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			candidates = append(candidates, id)
		}
	}

	found := make(map[string]bool, len(candidates))
	if len(candidates) > 0 {
		rows, err := r.db.Query(ctx, `SELECT id::text FROM services WHERE id = ANY($1::uuid[])`, candidates)
		if err != nil {
			return nil, fmt.Errorf("find services: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("scan service id: %w", err)
			}
			found[id] = true
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate service ids: %w", err)
		}
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err != nil || !found[parsed.String()] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var service domain.Service
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Slug,
		&service.Description,
		&service.Tags,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
