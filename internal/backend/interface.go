package backend

import (
	"context"

	"budgetik/internal/amqp"
	"budgetik/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the optional change bus and their cleanup.
type BackendResult struct {
	Store store.Store
	// Bus is nil when no broker is configured.
	Bus *amqp.Client
	// Ready reports whether the store is usable.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: directory holding the suggestion seed files
	DataDirectory string

	// Change bus, optional for every backend
	AMQPURL      string
	AMQPExchange string
	// AMQPQueue names a durable consumer queue; empty gives a private queue.
	AMQPQueue string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
