// Package badger stores records in an embedded BadgerDB, one key per record.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/document"
	"github.com/alem-hub/student-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds configuration for the BadgerDB instance.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// InMemoryConfig returns a configuration with no disk I/O.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// KeyPrefix starts every record key.
const KeyPrefix = "record/"

// recordKey keeps lexical key order equal to enumeration order.
func recordKey(position int) []byte {
	return fmt.Appendf(nil, "%s%08d", KeyPrefix, position)
}

// badgerLogger adapts the application logger to badger.Logger.
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// Gateway implements student.Gateway on BadgerDB.
type Gateway struct {
	db *badger.DB
}

// Open opens the database, creating the directory if needed.
func Open(cfg Config, log *logger.Logger) (*Gateway, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if log != nil {
		opts = opts.WithLogger(badgerLogger{log: log.With(logger.Component("badger"))})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open database: %w", err)
	}
	return &Gateway{db: db}, nil
}

// Close closes the database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Name implements student.Gateway.
func (g *Gateway) Name() string { return "badger" }

// Save replaces every record key in one transaction.
func (g *Gateway) Save(_ context.Context, records []student.Record) error {
	return g.db.Update(func(txn *badger.Txn) error {
		for _, k := range prefixKeys(txn) {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("badger: delete %s: %w", k, err)
			}
		}

		for i, r := range records {
			data, err := document.EncodeRecord(r)
			if err != nil {
				return err
			}
			if err := txn.Set(recordKey(i), data); err != nil {
				return fmt.Errorf("badger: set record %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

func prefixKeys(txn *badger.Txn) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(KeyPrefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// Load returns all records in key order.
func (g *Gateway) Load(_ context.Context) ([]student.Record, error) {
	records := []student.Record{}

	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(KeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				r, err := document.DecodeRecord(val)
				if err != nil {
					return fmt.Errorf("badger: key %s: %w", item.Key(), err)
				}
				records = append(records, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
