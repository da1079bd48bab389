// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is an interface for database operations that both *pgxpool.Pool and pgx.Tx implement.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIncident inserts the incident, its service links and messages in one transaction.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO incidents (title, start_date, end_date)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			incident.Title,
			incident.StartDate,
			incident.EndDate,
		).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert incident: %w", err)
		}

		if err := r.replaceServices(ctx, tx, incident.ID, incident.ServiceIDs); err != nil {
			return err
		}
		return r.appendMessages(ctx, tx, incident.ID, incident.Messages)
	})
}

// UpdateIncident stores the incident fields, replaces its service links and
// inserts messages not stored yet, in one transaction.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE incidents
			SET title = $2, start_date = $3, end_date = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		err := tx.QueryRow(ctx, query,
			incident.ID,
			incident.Title,
			incident.StartDate,
			incident.EndDate,
		).Scan(&incident.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return incidents.ErrIncidentNotFound
			}
			return fmt.Errorf("update incident: %w", err)
		}

		if err := r.replaceServices(ctx, tx, incident.ID, incident.ServiceIDs); err != nil {
			return err
		}
		return r.appendMessages(ctx, tx, incident.ID, incident.Messages)
	})
}

// GetIncident retrieves an incident with its services and messages.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	query := `
		SELECT id, title, start_date, end_date, created_at, updated_at
		FROM incidents
		WHERE id = $1
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}

	if err := r.loadRelations(ctx, r.db, []*domain.Incident{incident}); err != nil {
		return nil, err
	}
	return incident, nil
}

// ListIncidents retrieves incidents matching filter, most recently started first.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.Filter) ([]*domain.Incident, error) {
	query := `
		SELECT i.id, i.title, i.start_date, i.end_date, i.created_at, i.updated_at
		FROM incidents i
		WHERE TRUE
	`
	args := make([]any, 0, 2)

	if filter.ServiceID != "" {
		args = append(args, filter.ServiceID)
		query += ` AND EXISTS (
			SELECT 1 FROM incident_services s
			WHERE s.incident_id = i.id AND s.service_id = $` + strconv.Itoa(len(args)) + `)`
	}

	switch filter.State {
	case incidents.StateCurrent:
		args = append(args, filter.Now)
		query += ` AND (i.end_date IS NULL OR i.end_date > $` + strconv.Itoa(len(args)) + `)`
	case incidents.StatePast:
		args = append(args, filter.Now)
		query += ` AND i.end_date <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY i.start_date DESC, i.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	if err := r.loadRelations(ctx, r.db, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) replaceServices(ctx context.Context, q querier, incidentID string, serviceIDs []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM incident_services WHERE incident_id = $1`, incidentID); err != nil {
		return fmt.Errorf("delete incident services: %w", err)
	}

	query := `
		INSERT INTO incident_services (incident_id, service_id, position)
		VALUES ($1, $2, $3)
	`
	for pos, serviceID := range serviceIDs {
		if _, err := q.Exec(ctx, query, incidentID, serviceID, pos); err != nil {
			return fmt.Errorf("associate service %s: %w", serviceID, err)
		}
	}
	return nil
}

// appendMessages inserts messages in timeline order. Stored messages are left untouched.
func (r *Repository) appendMessages(ctx context.Context, q querier, incidentID string, messages []domain.Message) error {
	query := `
		INSERT INTO incident_messages (id, incident_id, status, text, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	for _, m := range messages {
		if _, err := q.Exec(ctx, query, m.ID, incidentID, string(m.Status), m.Text, m.Timestamp); err != nil {
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *Repository) loadRelations(ctx context.Context, q querier, list []*domain.Incident) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Incident, len(list))
	ids := make([]string, 0, len(list))
	for _, inc := range list {
		inc.ServiceIDs = make([]string, 0)
		inc.Messages = make([]domain.Message, 0)
		byID[inc.ID] = inc
		ids = append(ids, inc.ID)
	}

	serviceRows, err := q.Query(ctx, `
		SELECT incident_id::text, service_id
		FROM incident_services
		WHERE incident_id = ANY($1::uuid[])
		ORDER BY incident_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("load incident services: %w", err)
	}
	for serviceRows.Next() {
		var incidentID, serviceID string
		if err := serviceRows.Scan(&incidentID, &serviceID); err != nil {
			serviceRows.Close()
			return fmt.Errorf("scan incident service: %w", err)
		}
		if inc, ok := byID[incidentID]; ok {
			inc.ServiceIDs = append(inc.ServiceIDs, serviceID)
		}
	}
	serviceRows.Close()
	if err := serviceRows.Err(); err != nil {
		return fmt.Errorf("iterate incident services: %w", err)
	}

	messageRows, err := q.Query(ctx, `
		SELECT id::text, incident_id::text, status, text, timestamp
		FROM incident_messages
		WHERE incident_id = ANY($1::uuid[])
		ORDER BY incident_id, timestamp, seq
	`, ids)
	if err != nil {
		return fmt.Errorf("load incident messages: %w", err)
	}
	for messageRows.Next() {
		var m domain.Message
		var incidentID, status string
		if err := messageRows.Scan(&m.ID, &incidentID, &status, &m.Text, &m.Timestamp); err != nil {
			messageRows.Close()
			return fmt.Errorf("scan incident message: %w", err)
		}
		m.Status = domain.StatusCode(status)
		m.Timestamp = m.Timestamp.UTC()
		if inc, ok := byID[incidentID]; ok {
			inc.Messages = append(inc.Messages, m)
		}
	}
	messageRows.Close()
	if err := messageRows.Err(); err != nil {
		return fmt.Errorf("iterate incident messages: %w", err)
	}

	for _, inc := range list {
		inc.SortMessages()
	}
	return nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	err := row.Scan(
		&inc.ID,
		&inc.Title,
		&inc.StartDate,
		&inc.EndDate,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inc.StartDate = inc.StartDate.UTC()
	inc.CreatedAt = inc.CreatedAt.UTC()
	inc.UpdatedAt = inc.UpdatedAt.UTC()
	if inc.EndDate != nil {
		end := inc.EndDate.UTC()
		inc.EndDate = &end
	}
	return &inc, nil
}
