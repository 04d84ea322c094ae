// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBadgerBackend(t *testing.T) {
	t.Parallel()
	backend, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer backend.Close()
	ctx := context.Background()

	if _, found, err := backend.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = %v, %v", found, err)
	}
	if err := backend.Put(ctx, "k", []byte("first"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := backend.Put(ctx, "k", []byte("second"), 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value, found, err := backend.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if string(value) != "first" {
		t.Errorf("Get = %q, want the first value (add semantics)", value)
	}
}

func TestBadgerBackendPersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	backend, err := OpenBadger(BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	cache := New(Config{Backend: backend, MaxBytes: 1 << 20, Compression: CompressionLZ4})
	key := Key{Kind: testKind(t), Path: "course.yml", Commit: "c"}
	if _, err := cache.Bytes(ctx, key, func(context.Context) ([]byte, error) {
		return []byte("persisted"), nil
	}); err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBadger(BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	cache = New(Config{Backend: reopened, MaxBytes: 1 << 20})
	data, err := cache.Bytes(ctx, key, func(context.Context) ([]byte, error) {
		t.Error("value should come from the reopened store")
		return nil, nil
	})
	if err != nil || string(data) != "persisted" {
		t.Fatalf("Bytes = %q, %v", data, err)
	}
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := OpenBadger(BadgerConfig{}); err == nil {
		t.Fatal("expected error without a path")
	}
}
