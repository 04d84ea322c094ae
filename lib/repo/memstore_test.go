// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"testing"
)

func TestMemoryStoreCommitsAreDistinct(t *testing.T) {
	store := NewMemoryStore("memory:test")
	files := map[string][]byte{"a.yml": []byte("a: 1\n")}

	first, err := store.Commit(files)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	second, err := store.Commit(files)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if first == second {
		t.Fatal("identical content produced the same commit reference")
	}

	ctx := context.Background()
	firstTree, _ := store.RootTree(ctx, first)
	secondTree, _ := store.RootTree(ctx, second)
	if firstTree != secondTree {
		t.Error("identical content should share a root tree")
	}

	for _, commit := range []CommitRef{first, second} {
		exists, err := store.HasCommit(ctx, commit)
		if err != nil || !exists {
			t.Errorf("HasCommit(%s) = %v, %v", commit, exists, err)
		}
	}
	if exists, _ := store.HasCommit(ctx, "missing"); exists {
		t.Error("HasCommit(missing) = true")
	}
}

func TestMemoryStoreCommitErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string][]byte
	}{
		{"empty name", map[string][]byte{"/": nil}},
		{"file then directory", map[string][]byte{"a": nil, "a/b": nil}},
		{"double slash", map[string][]byte{"a//b": nil}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewMemoryStore("m").Commit(test.files); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMemoryStoreReadsAreCopies(t *testing.T) {
	store := NewMemoryStore("m")
	commit, err := store.Commit(map[string][]byte{"a": []byte("abc")})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	ctx := context.Background()
	blob, err := New(store).Blob(ctx, commit, "a")
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	blob.Data[0] = 'x'
	again, _ := New(store).Blob(ctx, commit, "a")
	if string(again.Data) != "abc" {
		t.Errorf("store content mutated through a returned blob: %q", again.Data)
	}
}
