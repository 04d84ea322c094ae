// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures a BadgerDB-backed cache store.
type BadgerConfig struct {
	// Path is the database directory. Required unless InMemory.
	Path string

	// InMemory keeps everything in RAM (tests).
	InMemory bool

	// Logger receives BadgerDB's internal logs. Nil silences them.
	Logger *slog.Logger
}

// BadgerBackend is a persistent Backend on BadgerDB. Badger's native
// per-entry TTL implements expiry.
type BadgerBackend struct {
	db *badger.DB
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens (creating if needed) a BadgerDB cache store.
func OpenBadger(config BadgerConfig) (*BadgerBackend, error) {
	if !config.InMemory && config.Path == "" {
		return nil, errors.New("cache: path is required for a persistent badger store")
	}

	var options badger.Options
	if config.InMemory {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(config.Path, 0o750); err != nil {
			return nil, fmt.Errorf("cache: creating %s: %w", config.Path, err)
		}
		options = badger.DefaultOptions(config.Path)
	}
	// Cache entries are reproducible; losing the tail of the value log
	// on a crash only costs recomputation.
	options = options.WithSyncWrites(false).WithNumVersionsToKeep(1)
	if config.Logger != nil {
		options = options.WithLogger(&badgerLogger{logger: config.Logger})
	} else {
		options = options.WithLogger(nil)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("cache: opening badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

// Get returns the stored value for key.
func (b *BadgerBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put stores value unless key is already present.
func (b *BadgerBackend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	// Two writers adding the same key race harmlessly.
	if errors.Is(err, badger.ErrConflict) {
		return nil
	}
	return err
}

// Close flushes and closes the database.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
