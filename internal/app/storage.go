package app

import (
	"context"
	"fmt"

	"github.com/bissquit/whiskerboard/internal/catalog"
	catalogmongo "github.com/bissquit/whiskerboard/internal/catalog/mongodb"
	catalogpostgres "github.com/bissquit/whiskerboard/internal/catalog/postgres"
	"github.com/bissquit/whiskerboard/internal/config"
	"github.com/bissquit/whiskerboard/internal/incidents"
	incidentsmongo "github.com/bissquit/whiskerboard/internal/incidents/mongodb"
	incidentspostgres "github.com/bissquit/whiskerboard/internal/incidents/postgres"
	"github.com/bissquit/whiskerboard/internal/pkg/metrics"
	"github.com/bissquit/whiskerboard/internal/pkg/mongodb"
	"github.com/bissquit/whiskerboard/internal/pkg/postgres"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// storage bundles the repositories of the configured backend.
type storage struct {
	catalog   catalog.Repository
	incidents incidents.Repository

	ping          func(ctx context.Context) error
	recordMetrics func()
	close         func(ctx context.Context) error
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		return openPostgres(cfg.Database)
	case config.BackendMongo:
		return openMongo(cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openPostgres(cfg config.DatabaseConfig) (*storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if cfg.AutoMigrate {
		if err := postgres.Migrate(cfg.URL); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnectAttempts: cfg.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &storage{
		catalog:       catalogpostgres.NewRepository(pool),
		incidents:     incidentspostgres.NewRepository(pool),
		ping:          pool.Ping,
		recordMetrics: func() { metrics.RecordDBPoolMetrics(pool) },
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(cfg config.MongoConfig) (*storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	monitor := metrics.NewMongoPoolMonitor(cfg.MaxPoolSize)
	client, err := mongodb.Connect(ctx, mongodb.Config{
		URI:             cfg.URI,
		MaxPoolSize:     cfg.MaxPoolSize,
		ConnectTimeout:  cfg.ConnectTimeout,
		ConnectAttempts: cfg.ConnectAttempts,
		PoolMonitor:     monitor.PoolMonitor(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	catalogRepo := catalogmongo.NewRepository(db)
	incidentsRepo := incidentsmongo.NewRepository(db)

	if err := catalogRepo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := incidentsRepo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &storage{
		catalog:   catalogRepo,
		incidents: incidentsRepo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		recordMetrics: monitor.Record,
		close:         client.Disconnect,
	}, nil
}
