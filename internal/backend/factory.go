package backend

import (
	"context"
	"errors"
	"fmt"

	"budgetik/internal/amqp"
	"budgetik/internal/log"
	"budgetik/internal/storage"
	"budgetik/internal/store"
	"budgetik/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		res = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	// The change bus is optional: without it live feeds still refresh
	// in-process, only other processes miss the events.
	if config.AMQPURL != "" {
		bus, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change bus", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.Bus = bus
		}
	}

	storeCleanup := res.Cleanup
	res.Cleanup = func() error {
		return closeAll(storeCleanup, res.Bus)
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) *BackendResult {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	st := memory.NewFromFiles(dataDir)
	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{
		Store: st,
		Ready: func(context.Context) error { return nil },
	}
}

// closeAll closes the store and the bus, collecting every error.
func closeAll(storeCleanup CleanupFunc, bus *amqp.Client) error {
	var errs []error
	if storeCleanup != nil {
		if err := storeCleanup(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}

// Notifier returns the bus as a store.Notifier, or nil without a bus.
func (r *BackendResult) Notifier() store.Notifier {
	if r.Bus == nil {
		return nil
	}
	return r.Bus
}
