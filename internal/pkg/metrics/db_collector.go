package metrics

import (
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/event"
)

// RecordDBPoolMetrics updates database pool metrics.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	stats := pool.Stat()

	DBPoolConnections.WithLabelValues("postgres", "in_use").Set(float64(stats.AcquiredConns()))
	DBPoolConnections.WithLabelValues("postgres", "idle").Set(float64(stats.IdleConns()))
	DBPoolConnections.WithLabelValues("postgres", "max").Set(float64(stats.MaxConns()))
}

// MongoPoolMonitor tracks MongoDB connection pool events.
type MongoPoolMonitor struct {
	open   atomic.Int64
	inUse  atomic.Int64
	maxLen uint64
}

// NewMongoPoolMonitor creates a monitor for a pool of at most maxPoolSize connections.
func NewMongoPoolMonitor(maxPoolSize uint64) *MongoPoolMonitor {
	return &MongoPoolMonitor{maxLen: maxPoolSize}
}

// PoolMonitor returns the driver hook to install on client options.
func (m *MongoPoolMonitor) PoolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{Event: m.handle}
}

func (m *MongoPoolMonitor) handle(e *event.PoolEvent) {
	switch e.Type {
	case event.ConnectionCreated:
		m.open.Add(1)
	case event.ConnectionClosed:
		m.open.Add(-1)
	case event.GetSucceeded:
		m.inUse.Add(1)
	case event.ConnectionReturned:
		m.inUse.Add(-1)
	}
}

// Record updates database pool metrics from the observed events.
func (m *MongoPoolMonitor) Record() {
	open := m.open.Load()
	inUse := m.inUse.Load()
	DBPoolConnections.WithLabelValues("mongo", "in_use").Set(float64(inUse))
	DBPoolConnections.WithLabelValues("mongo", "idle").Set(float64(max(open-inUse, 0)))
	DBPoolConnections.WithLabelValues("mongo", "max").Set(float64(m.maxLen))
}
