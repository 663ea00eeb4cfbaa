package server

import (
	"sync/atomic"
	"time"
)

// Metrics tracks registry runtime statistics.
// All counters use atomic operations for lock-free concurrent access.
type Metrics struct {
	startTime time.Time

	// Connection counters
	TotalConnections  atomic.Int64 // lifetime RPC connections accepted
	ActiveConnections atomic.Int64 // current active RPC connections

	// Registry counters
	Registrations   atomic.Int64 // register calls handled
	LocationUpdates atomic.Int64 // successful location updates
	RadiusUpdates   atomic.Int64 // successful radius updates
	StatusUpdates   atomic.Int64 // successful status updates
	SnapshotReads   atomic.Int64 // list_users snapshots served

	// Mailbox counters
	SyncMessagesStored  atomic.Int64 // messages accepted into mailboxes
	SyncMessagesDrained atomic.Int64 // messages handed to recipients
	SyncSendsRejected   atomic.Int64 // sends rejected (unknown/offline recipient)
}

// NewMetrics creates a Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Uptime returns the time elapsed since the server started.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
