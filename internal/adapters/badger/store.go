// Package badger persists assignments in a BadgerDB directory, one directory
// per user profile.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Config holds configuration for the profile store.
type Config struct {
	// Path is the profile directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool
	// SyncWrites fsyncs every Set.
	SyncWrites bool
	// Logger receives BadgerDB's internal logs. Nil disables them.
	Logger *zap.SugaredLogger
}

// zapLogger adapts a zap logger to badger.Logger.
type zapLogger struct {
	log *zap.SugaredLogger
}

func (l zapLogger) Errorf(format string, args ...any)   { l.log.Errorf(strings.TrimSpace(format), args...) }
func (l zapLogger) Warningf(format string, args ...any) { l.log.Warnf(strings.TrimSpace(format), args...) }
func (l zapLogger) Infof(format string, args ...any)    { l.log.Debugf(strings.TrimSpace(format), args...) }
func (l zapLogger) Debugf(format string, args ...any)   { l.log.Debugf(strings.TrimSpace(format), args...) }

type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the profile store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent profile store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create profile directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(zapLogger{log: cfg.Logger.Named("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			v, ok := domain.ParseVariant(string(raw))
			if !ok {
				continue
			}
			out = append(out, domain.Assignment{
				Experiment: strings.TrimPrefix(string(item.Key()), prefix),
				Variant:    v,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s*: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Experiment < out[j].Experiment })
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
