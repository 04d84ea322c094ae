// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"fmt"
	"strings"
)

// Store is the primitive read interface of a content-addressed
// repository. Implementations must be safe for concurrent use.
type Store interface {
	// Identity returns a stable string naming this store. It is part
	// of every cache key, so it must not change for the lifetime of
	// the underlying repository.
	Identity() string

	// Close releases resources held by the store.
	Close() error

	// RootTree returns the root tree of commit. A missing commit
	// returns an error matching ErrNotFound.
	RootTree(ctx context.Context, commit CommitRef) (ObjectID, error)

	// ReadTree returns the entries of the tree with the given id.
	ReadTree(ctx context.Context, id ObjectID) ([]TreeEntry, error)

	// ReadBlob returns the contents of the blob with the given id.
	ReadBlob(ctx context.Context, id ObjectID) ([]byte, error)

	// HasCommit reports whether commit exists in the store.
	HasCommit(ctx context.Context, commit CommitRef) (bool, error)
}

// Repository is a handle on a course repository, optionally scoped to
// a subdirectory.
type Repository struct {
	store  Store
	subdir string
}

// New returns a handle on the whole of store.
func New(store Store) *Repository {
	return &Repository{store: store}
}

// WithSubdir returns a handle whose paths are all relative to subdir.
// An empty subdir is equivalent to New.
func WithSubdir(store Store, subdir string) *Repository {
	return &Repository{store: store, subdir: strings.Trim(subdir, "/")}
}

// Store returns the unwrapped store.
func (r *Repository) Store() Store {
	return r.store
}

// Subdir returns the subdirectory scope, or "" for the whole store.
func (r *Repository) Subdir() string {
	return r.subdir
}

// Identity returns the identity of the unwrapped store.
func (r *Repository) Identity() string {
	return r.store.Identity()
}

// Close closes the unwrapped store.
func (r *Repository) Close() error {
	return r.store.Close()
}

// HasCommit reports whether commit exists in the unwrapped store.
func (r *Repository) HasCommit(ctx context.Context, commit CommitRef) (bool, error) {
	return r.store.HasCommit(ctx, commit)
}

// FullPath returns path with the subdirectory scope applied.
func (r *Repository) FullPath(path string) string {
	if r.subdir == "" {
		return path
	}
	if path == "" {
		return r.subdir
	}
	return r.subdir + "/" + path
}

// Resolve walks path from the root tree of commit and returns the
// *Blob or *Tree found there. If allowTree is false, resolving to a
// tree fails with ErrNotFound.
func (r *Repository) Resolve(ctx context.Context, commit CommitRef, path string, allowTree bool) (Object, error) {
	fullPath := r.FullPath(path)

	rootID, err := r.store.RootTree(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("resolving %s at %s: %w", fullPath, commit, err)
	}

	if fullPath == "" {
		if !allowTree {
			return nil, &NotFoundError{Reason: "repo root is a directory, not a file"}
		}
		entries, err := r.store.ReadTree(ctx, rootID)
		if err != nil {
			return nil, err
		}
		return &Tree{Path: "", Entries: entries}, nil
	}

	names := strings.Split(fullPath, "/")
	current := TreeEntry{Mode: ModeTree, ID: rootID}
	for _, name := range names[:len(names)-1] {
		if name == "" {
			continue
		}
		current, err = r.child(ctx, current, name, fullPath)
		if err != nil {
			return nil, err
		}
	}
	current, err = r.child(ctx, current, names[len(names)-1], fullPath)
	if err != nil {
		return nil, err
	}

	if current.Mode.IsTree() {
		if !allowTree {
			return nil, &NotFoundError{Path: fullPath, Reason: "is a directory, not a file"}
		}
		entries, err := r.store.ReadTree(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		return &Tree{Path: fullPath, Entries: entries}, nil
	}

	data, err := r.store.ReadBlob(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	return &Blob{Path: fullPath, Data: data}, nil
}

// child looks up name inside the tree named by parent.
func (r *Repository) child(ctx context.Context, parent TreeEntry, name, fullPath string) (TreeEntry, error) {
	if !parent.Mode.IsTree() {
		return TreeEntry{}, &NotFoundError{Path: fullPath, Reason: "is a file, not a directory"}
	}
	entries, err := r.store.ReadTree(ctx, parent.ID)
	if err != nil {
		return TreeEntry{}, err
	}
	tree := Tree{Entries: entries}
	entry, ok := tree.Lookup(name)
	if !ok {
		return TreeEntry{}, &NotFoundError{Path: fullPath, Reason: "not found"}
	}
	return entry, nil
}

// Blob resolves path to a file.
func (r *Repository) Blob(ctx context.Context, commit CommitRef, path string) (*Blob, error) {
	object, err := r.Resolve(ctx, commit, path, false)
	if err != nil {
		return nil, err
	}
	return object.(*Blob), nil
}

// Tree resolves path to a directory. Resolving a file fails with
// ErrNotFound.
func (r *Repository) Tree(ctx context.Context, commit CommitRef, path string) (*Tree, error) {
	object, err := r.Resolve(ctx, commit, path, true)
	if err != nil {
		return nil, err
	}
	tree, ok := object.(*Tree)
	if !ok {
		return nil, &NotFoundError{Path: r.FullPath(path), Reason: "is a file, not a directory"}
	}
	return tree, nil
}
