// Package mongodb provides MongoDB connection utilities.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/whiskerboard/internal/pkg/retry"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config contains MongoDB connection configuration.
type Config struct {
	URI             string
	MaxPoolSize     uint64
	ConnectTimeout  time.Duration
	ConnectAttempts int
	PoolMonitor     *event.PoolMonitor
}

// Connect creates a client and pings the primary, retrying with backoff.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.PoolMonitor != nil {
		opts.SetPoolMonitor(cfg.PoolMonitor)
	}

	var client *mongo.Client
	err := retry.Do(ctx, "connect to mongodb", cfg.ConnectAttempts, func(ctx context.Context) error {
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("ping: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
