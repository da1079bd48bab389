// Package mongodb provides MongoDB implementation of the incidents repository.
// Each incident is one document with its messages embedded.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/bissquit/whiskerboard/internal/incidents"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding incident documents.
const CollectionName = "incidents"

type messageDocument struct {
	ID        string    `bson:"id"`
	Status    string    `bson:"status"`
	Text      string    `bson:"text"`
	Timestamp time.Time `bson:"timestamp"`
}

type incidentDocument struct {
	ID         string            `bson:"_id"`
	ServiceIDs []string          `bson:"service_ids"`
	Title      string            `bson:"title"`
	Messages   []messageDocument `bson:"messages"`
	StartDate  time.Time         `bson:"start_date"`
	EndDate    *time.Time        `bson:"end_date"`
	CreatedAt  time.Time         `bson:"created_at"`
	UpdatedAt  time.Time         `bson:"updated_at"`
}

func newMessageDocument(m domain.Message) messageDocument {
	return messageDocument{
		ID:        m.ID,
		Status:    string(m.Status),
		Text:      m.Text,
		Timestamp: m.Timestamp.UTC(),
	}
}

func (d *incidentDocument) toDomain() *domain.Incident {
	inc := &domain.Incident{
		ID:         d.ID,
		ServiceIDs: d.ServiceIDs,
		Title:      d.Title,
		Messages:   make([]domain.Message, 0, len(d.Messages)),
		StartDate:  d.StartDate.UTC(),
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if inc.ServiceIDs == nil {
		inc.ServiceIDs = []string{}
	}
	if d.EndDate != nil {
		end := d.EndDate.UTC()
		inc.EndDate = &end
	}
	for _, m := range d.Messages {
		inc.Messages = append(inc.Messages, domain.Message{
			ID:        m.ID,
			Status:    domain.StatusCode(m.Status),
			Text:      m.Text,
			Timestamp: m.Timestamp.UTC(),
		})
	}
	inc.SortMessages()
	return inc
}

// Repository implements incidents.Repository using MongoDB.
type Repository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewRepository creates a new MongoDB repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		coll: db.Collection(CollectionName),
		now:  time.Now,
	}
}

// EnsureIndexes creates the indexes used by incident listing.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "service_ids", Value: 1}},
			Options: options.Index().SetName("service_ids"),
		},
		{
			Keys:    bson.D{{Key: "end_date", Value: 1}},
			Options: options.Index().SetName("end_date"),
		},
	})
	if err != nil {
		return fmt.Errorf("create incident indexes: %w", err)
	}
	return nil
}

// CreateIncident inserts the incident document with its messages.
func (r *Repository) CreateIncident(ctx context.Context, incident *domain.Incident) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	incident.SortMessages()

	doc := incidentDocument{
		ID:         uuid.NewString(),
		ServiceIDs: incident.ServiceIDs,
		Title:      incident.Title,
		Messages:   make([]messageDocument, 0, len(incident.Messages)),
		StartDate:  incident.StartDate.UTC(),
		EndDate:    incident.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, m := range incident.Messages {
		doc.Messages = append(doc.Messages, newMessageDocument(m))
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}

	incident.ID = doc.ID
	incident.CreatedAt = now
	incident.UpdatedAt = now
	return nil
}

// UpdateIncident stores the incident fields and pushes messages not stored yet,
// keeping the embedded timeline sorted by timestamp.
func (r *Repository) UpdateIncident(ctx context.Context, incident *domain.Incident) error {
	var stored struct {
		Messages []struct {
			ID string `bson:"id"`
		} `bson:"messages"`
	}
	err := r.coll.FindOne(ctx,
		bson.M{"_id": incident.ID},
		options.FindOne().SetProjection(bson.M{"messages.id": 1}),
	).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("load incident messages: %w", err)
	}

	known := make(map[string]bool, len(stored.Messages))
	for _, m := range stored.Messages {
		known[m.ID] = true
	}
	added := make([]messageDocument, 0)
	for _, m := range incident.Messages {
		if !known[m.ID] {
			added = append(added, newMessageDocument(m))
		}
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"service_ids": incident.ServiceIDs,
			"title":       incident.Title,
			"start_date":  incident.StartDate.UTC(),
			"end_date":    incident.EndDate,
			"updated_at":  now,
		},
		"$push": bson.M{
			"messages": bson.M{
				"$each": added,
				"$sort": bson.M{"timestamp": 1},
			},
		},
	}

	result, err := r.coll.UpdateByID(ctx, incident.ID, update)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if result.MatchedCount == 0 {
		return incidents.ErrIncidentNotFound
	}

	incident.SortMessages()
	incident.UpdatedAt = now
	return nil
}

// GetIncident retrieves an incident by ID.
func (r *Repository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	var doc incidentDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return doc.toDomain(), nil
}

// ListIncidents retrieves incidents matching filter, most recently started first.
func (r *Repository) ListIncidents(ctx context.Context, filter incidents.Filter) ([]*domain.Incident, error) {
	query := bson.M{}
	if filter.ServiceID != "" {
		query["service_ids"] = filter.ServiceID
	}
	switch filter.State {
	case incidents.StateCurrent:
		query["$or"] = bson.A{
			bson.M{"end_date": nil},
			bson.M{"end_date": bson.M{"$gt": filter.Now}},
		}
	case incidents.StatePast:
		query["end_date"] = bson.M{"$lte": filter.Now}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	var docs []incidentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	list := make([]*domain.Incident, 0, len(docs))
	for i := range docs {
		list = append(list, docs[i].toDomain())
	}
	return list, nil
}
