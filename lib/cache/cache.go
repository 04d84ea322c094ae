// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bureau-foundation/courseware/lib/codec"
)

// DefaultMaxKeyLength keeps keys under the 250-byte limit common to
// memcached-style stores.
const DefaultMaxKeyLength = 240

// Config configures a Cache.
type Config struct {
	// Backend stores entries. Nil disables caching.
	Backend Backend

	// MaxBytes is the largest value that is stored, measured before
	// compression. Zero (the default) stores only empty values, which
	// in practice caches nothing.
	MaxBytes int

	// MaxKeyLength bypasses the cache for keys of this length or
	// longer. Zero selects DefaultMaxKeyLength.
	MaxKeyLength int

	// TTL is passed to Backend.Put. Zero means entries never expire.
	TTL time.Duration

	// Compression applied to stored values.
	Compression Compression

	Logger *slog.Logger
}

// Cache memoizes values keyed by immutable inputs. A nil *Cache is
// valid and computes every value.
type Cache struct {
	backend      Backend
	maxBytes     int
	maxKeyLength int
	ttl          time.Duration
	compression  Compression
	logger       *slog.Logger

	group singleflight.Group
}

// New creates a Cache.
func New(config Config) *Cache {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxKeyLength := config.MaxKeyLength
	if maxKeyLength <= 0 {
		maxKeyLength = DefaultMaxKeyLength
	}
	return &Cache{
		backend:      config.Backend,
		maxBytes:     config.MaxBytes,
		maxKeyLength: maxKeyLength,
		ttl:          config.TTL,
		compression:  config.Compression,
		logger:       logger,
	}
}

// Bytes returns the cached bytes for key, or computes and stores them.
func (c *Cache) Bytes(ctx context.Context, key Key, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	keyString, ok := c.usable(key)
	if !ok {
		return compute(ctx)
	}
	if data, found := c.lookup(ctx, key.Kind, keyString); found {
		return data, nil
	}

	result, err := c.shared(ctx, keyString, func(ctx context.Context) (any, error) {
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key.Kind, keyString, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Get returns the cached value for key, or computes and stores it. T
// must round-trip through lib/codec; values that fail to encode are
// returned uncached.
func Get[T any](ctx context.Context, c *Cache, key Key, compute func(context.Context) (T, error)) (T, error) {
	keyString, ok := c.usable(key)
	if !ok {
		return compute(ctx)
	}
	if data, found := c.lookup(ctx, key.Kind, keyString); found {
		var value T
		err := codec.Unmarshal(data, &value)
		if err == nil {
			return value, nil
		}
		c.logger.Warn("discarding undecodable cache entry",
			"key", keyString,
			"error", err,
		)
	}

	result, err := c.shared(ctx, keyString, func(ctx context.Context) (any, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, err := codec.Marshal(value)
		if err != nil {
			c.logger.Warn("value is not cacheable",
				"key", keyString,
				"error", err,
			)
			return value, nil
		}
		c.store(ctx, key.Kind, keyString, data)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}

// shared runs fn once per key among concurrent callers. fn runs
// detached from any one caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (c *Cache) shared(ctx context.Context, keyString string, fn func(context.Context) (any, error)) (any, error) {
	results := c.group.DoChan(keyString, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case result := <-results:
		return result.Val, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// usable returns the rendered key if this lookup should touch the
// backend at all.
func (c *Cache) usable(key Key) (string, bool) {
	if c == nil || c.backend == nil {
		return "", false
	}
	keyString := key.String()
	if len(keyString) >= c.maxKeyLength {
		requestsTotal.WithLabelValues(string(key.Kind), resultBypass).Inc()
		c.logger.Debug("cache key too long, bypassing",
			"kind", key.Kind,
			"length", len(keyString),
		)
		return "", false
	}
	return keyString, true
}

func (c *Cache) lookup(ctx context.Context, kind Kind, keyString string) ([]byte, bool) {
	framed, found, err := c.backend.Get(ctx, keyString)
	if err != nil {
		requestsTotal.WithLabelValues(string(kind), resultError).Inc()
		c.logger.Warn("cache backend lookup failed",
			"key", keyString,
			"error", err,
		)
		return nil, false
	}
	if !found {
		requestsTotal.WithLabelValues(string(kind), resultMiss).Inc()
		c.logger.Debug("cache miss", "key", keyString)
		return nil, false
	}
	data, err := decodeValue(framed)
	if err != nil {
		requestsTotal.WithLabelValues(string(kind), resultError).Inc()
		c.logger.Warn("discarding corrupt cache entry",
			"key", keyString,
			"error", err,
		)
		return nil, false
	}
	requestsTotal.WithLabelValues(string(kind), resultHit).Inc()
	c.logger.Debug("cache hit", "key", keyString)
	return data, true
}

// store writes data unless it exceeds the size ceiling. The ceiling
// applies to the uncompressed value.
func (c *Cache) store(ctx context.Context, kind Kind, keyString string, data []byte) {
	if len(data) > c.maxBytes {
		storesTotal.WithLabelValues(string(kind), storeTooLarge).Inc()
		return
	}
	framed, err := encodeValue(data, c.compression)
	if err == nil {
		err = c.backend.Put(ctx, keyString, framed, c.ttl)
	}
	if err != nil {
		storesTotal.WithLabelValues(string(kind), storeError).Inc()
		c.logger.Warn("cache backend store failed",
			"key", keyString,
			"error", err,
		)
		return
	}
	storesTotal.WithLabelValues(string(kind), storeStored).Inc()
}
