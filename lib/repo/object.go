// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound matches every resolution failure: a missing commit,
// path segment, or object, or an object of the wrong kind.
var ErrNotFound = errors.New("not found")

// NotFoundError describes why a path could not be resolved.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return "resource not found: " + e.Reason
	}
	return fmt.Sprintf("resource '%s' %s", e.Path, e.Reason)
}

// Is reports ErrNotFound equivalence for errors.Is.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CommitRef is an immutable commit hash. Two different references are
// never treated as equal, even if they name identical content.
type CommitRef string

// ObjectID names a tree or blob inside a store.
type ObjectID string

// Mode is a git-style file mode.
type Mode uint32

const (
	ModeFile       Mode = 0o100644
	ModeExecutable Mode = 0o100755
	ModeSymlink    Mode = 0o120000
	ModeTree       Mode = 0o040000
)

// IsTree reports whether m is the directory mode.
func (m Mode) IsTree() bool {
	return m == ModeTree
}

func (m Mode) String() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// TreeEntry is one named child of a tree.
type TreeEntry struct {
	Name string
	Mode Mode
	ID   ObjectID
}

// Object is the result of resolving a path: a *Blob or a *Tree.
type Object interface {
	ObjectPath() string
}

// Blob is the content of one file at a commit.
type Blob struct {
	Path string
	Data []byte
}

// ObjectPath returns the resolved path of the blob.
func (b *Blob) ObjectPath() string { return b.Path }

// Tree is a directory listing at a commit. Entries are sorted by name.
type Tree struct {
	Path    string
	Entries []TreeEntry
}

// ObjectPath returns the resolved path of the tree.
func (t *Tree) ObjectPath() string { return t.Path }

// Lookup returns the entry with the given name.
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	index := sort.Search(len(t.Entries), func(i int) bool {
		return t.Entries[i].Name >= name
	})
	if index < len(t.Entries) && t.Entries[index].Name == name {
		return t.Entries[index], true
	}
	return TreeEntry{}, false
}

func sortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}
