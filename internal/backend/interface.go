package backend

import (
	"context"

	"pocketbudget/internal/kvstore"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/services"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult holds the stores a process runs against.
type BackendResult struct {
	Ledger ledger.Ledger
	KV     kvstore.Store
	// Publisher is nil when AMQP is disabled or unreachable.
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	KVDBPath     string

	// Optional event publishing, any backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	for _, t := range GetBackendTypes() {
		if bt == t {
			return true
		}
	}
	return false
}
