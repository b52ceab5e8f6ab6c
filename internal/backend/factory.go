package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pocketbudget/internal/amqp"
	"pocketbudget/internal/kvstore"
	"pocketbudget/internal/ledger/memory"
	"pocketbudget/internal/log"
	"pocketbudget/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	kv, err := storage.OpenKVStore(config.KVDBPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		log.FieldComponent, log.ComponentBackend,
		log.FieldBackend, SQLiteBackend,
		"db_path", config.SQLiteDBPath,
		"kv_path", config.KVDBPath)

	return &BackendResult{
		Ledger: repo,
		KV:     kv,
		Cleanup: func() error {
			return errors.Join(kv.Close(), repo.Close())
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Info("Initialized memory backend",
		log.FieldComponent, log.ComponentBackend,
		log.FieldBackend, MemoryBackend)

	return &BackendResult{
		Ledger: memory.New(),
		KV:     kvstore.NewMemory(),
	}
}

// attachPublisher connects the optional AMQP publisher. An unreachable broker
// is logged and the backend runs without events.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
			log.FieldComponent, log.ComponentAMQP,
			log.FieldError, err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		log.FieldComponent, log.ComponentAMQP,
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	cleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
		if cleanup != nil {
			errs = append(errs, cleanup())
		}
		return errors.Join(errs...)
	}
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
