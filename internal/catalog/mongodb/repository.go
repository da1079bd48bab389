// Package mongodb provides MongoDB implementation of the catalog repository.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/whiskerboard/internal/catalog"
	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding service documents.
const CollectionName = "services"

type serviceDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	Tags        []string  `bson:"tags"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d *serviceDocument) toDomain() *domain.Service {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Service{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Tags:        tags,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Repository implements the catalog.Repository interface using MongoDB.
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

// EnsureIndexes creates the unique slug index and the name index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name"),
		},
	})
	if err != nil {
		return fmt.Errorf("create service indexes: %w", err)
	}
	return nil
}

// CreateService inserts a service. A taken slug yields catalog.ErrSlugExists.
func (r *Repository) CreateService(ctx context.Context, service *domain.Service) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := serviceDocument{
		ID:          uuid.NewString(),
		Name:        service.Name,
		Slug:        service.Slug,
		Description: service.Description,
		Tags:        tagsOrEmpty(service.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalog.ErrSlugExists
		}
		return fmt.Errorf("create service: %w", err)
	}

	service.ID = doc.ID
	service.CreatedAt = doc.CreatedAt
	service.UpdatedAt = doc.UpdatedAt
	return nil
}

// GetServiceByID retrieves a service by its ID.
func (r *Repository) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetServiceBySlug retrieves a service by its slug.
func (r *Repository) GetServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*domain.Service, error) {
	var doc serviceDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return doc.toDomain(), nil
}

// ListServices retrieves all services ordered by name.
func (r *Repository) ListServices(ctx context.Context) ([]domain.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	var docs []serviceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}

	services := make([]domain.Service, 0, len(docs))
	for i := range docs {
		services = append(services, *docs[i].toDomain())
	}
	return services, nil
}

// UpdateService updates the mutable fields of a service. The slug is not touched.
func (r *Repository) UpdateService(ctx context.Context, service *domain.Service) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	update := bson.M{"$set": bson.M{
		"name":        service.Name,
		"description": service.Description,
		"tags":        tagsOrEmpty(service.Tags),
		"updated_at":  now,
	}}

	result, err := r.coll.UpdateByID(ctx, service.ID, update)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalog.ErrServiceNotFound
	}

	service.UpdatedAt = now
	return nil
}

// MissingServiceIDs returns the ids that do not belong to any service, in input order.
func (r *Repository) MissingServiceIDs(ctx context.Context, ids []string) ([]string, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) > 0 {
		opts := options.Find().SetProjection(bson.M{"_id": 1})
		cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return nil, fmt.Errorf("find services: %w", err)
		}

		var docs []struct {
			ID string `bson:"_id"`
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("decode service ids: %w", err)
		}
		for _, d := range docs {
			found[d.ID] = true
		}
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
