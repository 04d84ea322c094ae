// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bureau-foundation/courseware/lib/clock"
)

// Backend is an external key-value store. Implementations must be
// safe for concurrent use.
type Backend interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key unless key is already present. A
	// zero ttl means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryBackend is a process-local Backend. Entries never leave memory
// except by expiry, so it is meant for tests and short-lived tools.
type MemoryBackend struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryBackend returns an empty backend. A nil clock uses the real
// wall clock for TTL expiry.
func NewMemoryBackend(c clock.Clock) *MemoryBackend {
	return &MemoryBackend{
		clock:   clock.OrReal(c),
		entries: make(map[string]memoryEntry),
	}
}

// Get returns a copy of the stored value.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Put stores a copy of value unless a live entry exists.
func (b *MemoryBackend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.lookup(key); ok {
		return nil
	}
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expires = b.clock.Now().Add(ttl)
	}
	b.entries[key] = entry
	return nil
}

// Len returns the number of live entries.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for key := range b.entries {
		if _, ok := b.lookup(key); ok {
			count++
		}
	}
	return count
}

// lookup returns a live entry, dropping it if expired. Caller holds b.mu.
func (b *MemoryBackend) lookup(key string) (memoryEntry, bool) {
	entry, ok := b.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expires.IsZero() && !b.clock.Now().Before(entry.expires) {
		delete(b.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
