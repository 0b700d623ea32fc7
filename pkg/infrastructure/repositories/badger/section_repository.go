// Package badger provides durable section storage backed by BadgerDB,
// a local embedded key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/retailerkit/planner/pkg/domain/repositories"
)

// Config holds configuration for the badger-backed section repository
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory disables disk persistence. Useful for testing.
	InMemory bool

	// SyncWrites forces every write to disk before returning. The dataset is
	// a handful of records, so synchronous writes are acceptable.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil, badger's
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for the given data directory
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// SectionRepository stores each planning-state section under its own key
type SectionRepository struct {
	db *badger.DB
}

// Verify interface compliance
var _ repositories.SectionRepository = (*SectionRepository)(nil)

// Open creates the data directory if needed and opens the database
func Open(cfg Config) (*SectionRepository, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &SectionRepository{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory repository for testing
func OpenInMemory() (*SectionRepository, error) {
	return Open(Config{InMemory: true})
}

// Load returns the serialized bytes for a section, or ErrSectionNotFound
func (r *SectionRepository) Load(ctx context.Context, section repositories.Section) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sectionKey(section))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repositories.ErrSectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load section %s: %w", section, err)
	}
	return data, nil
}

// Save writes the serialized bytes for a section
func (r *SectionRepository) Save(ctx context.Context, section repositories.Section, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sectionKey(section), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save section %s: %w", section, err)
	}
	return nil
}

// Close closes the underlying database
func (r *SectionRepository) Close() error {
	return r.db.Close()
}

func sectionKey(section repositories.Section) []byte {
	return []byte("state/" + string(section))
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
