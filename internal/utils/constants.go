package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultRequestTimeout bounds a whole HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	// StoreDialTimeout is the default timeout for opening a store connection.
	StoreDialTimeout = 5 * time.Second

	// StoreCommandTimeout is the default per-node dispatch timeout.
	StoreCommandTimeout = 10 * time.Second

	// StoreHealthCheckInterval is the interval between pool health checks.
	StoreHealthCheckInterval = 30 * time.Second

	// EventPublishTimeout bounds publishing of a single execution event.
	EventPublishTimeout = 3 * time.Second
)

// =============================================================================
// Scan Constants
// =============================================================================

const (
	// DefaultScanCount is the COUNT hint sent with each SCAN call.
	DefaultScanCount = 200

	// DefaultScanThreshold caps the number of keys examined per shard per page.
	DefaultScanThreshold = 10000

	// MaxScanCount is the largest accepted page size.
	MaxScanCount = 100000
)

// =============================================================================
// Workbench Constants
// =============================================================================

const (
	// DefaultMaxHistory is the number of executions retained per database.
	DefaultMaxHistory = 30

	// ExecutedEventSubject is appended to the queue subject prefix.
	ExecutedEventSubject = "workbench.executed"
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents an in-process queue (for testing)
	QueueTypeMemory QueueType = "memory"

	// QueueTypeNone disables event publishing.
	QueueTypeNone QueueType = "none"
)
