package links

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/linkpath/pkg/types"
)

// Store persists link results between runs.
type Store interface {
	Get(ctx context.Context, title string) (*types.LinkResult, bool, error)
	Put(ctx context.Context, title string, res *types.LinkResult) error
	Close() error
}

const linkKeyPrefix = "links/"

// BadgerConfig holds configuration for a BadgerStore.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for testing.
	InMemory bool

	// TTL bounds how long a stored entry is served. Zero keeps entries forever.
	TTL time.Duration

	// Logger receives BadgerDB's internal logs. If nil they are discarded.
	Logger *slog.Logger
}

// BadgerStore is a Store backed by BadgerDB.
//
// Thread Safety: safe for concurrent use.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
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
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadgerStore opens (creating if needed) a BadgerStore.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent link store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create link store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open link store: %w", err)
	}
	return &BadgerStore{db: db, ttl: cfg.TTL}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, title string) (*types.LinkResult, bool, error) {
	var res types.LinkResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(linkKeyPrefix + title))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &res)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read links for %q: %w", title, err)
	}
	return &res, true, nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, title string, res *types.LinkResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode links for %q: %w", title, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(linkKeyPrefix+title), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
