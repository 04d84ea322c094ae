// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

// MemoryStore is a content-addressed in-memory object store. Object
// ids are hex BLAKE3 digests of a typed header plus content, so equal
// trees and blobs share storage. Commits are never deduplicated: each
// call to Commit yields a fresh reference.
type MemoryStore struct {
	identity string

	mu      sync.RWMutex
	blobs   map[ObjectID][]byte
	trees   map[ObjectID][]TreeEntry
	commits map[CommitRef]ObjectID
	serial  int
}

// NewMemoryStore returns an empty store reporting the given identity.
func NewMemoryStore(identity string) *MemoryStore {
	return &MemoryStore{
		identity: identity,
		blobs:    make(map[ObjectID][]byte),
		trees:    make(map[ObjectID][]TreeEntry),
		commits:  make(map[CommitRef]ObjectID),
	}
}

// Identity returns the identity given to NewMemoryStore.
func (s *MemoryStore) Identity() string { return s.identity }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Commit stores files (slash-separated path to content) as a new
// commit and returns its reference. Intermediate directories are
// created implicitly.
func (s *MemoryStore) Commit(files map[string][]byte) (CommitRef, error) {
	root := &memoryDir{children: make(map[string]*memoryDir), files: make(map[string][]byte)}
	for path, data := range files {
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) == 0 || segments[len(segments)-1] == "" {
			return "", fmt.Errorf("invalid file path %q", path)
		}
		dir := root
		for _, segment := range segments[:len(segments)-1] {
			if segment == "" {
				return "", fmt.Errorf("invalid file path %q", path)
			}
			if _, clash := dir.files[segment]; clash {
				return "", fmt.Errorf("path %q descends into a file", path)
			}
			child, ok := dir.children[segment]
			if !ok {
				child = &memoryDir{children: make(map[string]*memoryDir), files: make(map[string][]byte)}
				dir.children[segment] = child
			}
			dir = child
		}
		name := segments[len(segments)-1]
		if _, clash := dir.children[name]; clash {
			return "", fmt.Errorf("file %q collides with a directory", path)
		}
		dir.files[name] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	treeID := s.storeDir(root)
	s.serial++
	header := "commit " + strconv.Itoa(s.serial) + " " + string(treeID)
	sum := blake3.Sum256([]byte(header))
	commit := CommitRef(hex.EncodeToString(sum[:]))
	s.commits[commit] = treeID
	return commit, nil
}

type memoryDir struct {
	children map[string]*memoryDir
	files    map[string][]byte
}

// storeDir writes dir and everything below it. Caller holds s.mu.
func (s *MemoryStore) storeDir(dir *memoryDir) ObjectID {
	var entries []TreeEntry
	for name, data := range dir.files {
		id := objectID("blob", data)
		if _, exists := s.blobs[id]; !exists {
			s.blobs[id] = append([]byte(nil), data...)
		}
		entries = append(entries, TreeEntry{Name: name, Mode: ModeFile, ID: id})
	}
	for name, child := range dir.children {
		entries = append(entries, TreeEntry{Name: name, Mode: ModeTree, ID: s.storeDir(child)})
	}
	sortEntries(entries)

	var serialized strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&serialized, "%s %s\x00%s", entry.Mode, entry.Name, entry.ID)
	}
	id := objectID("tree", []byte(serialized.String()))
	s.trees[id] = entries
	return id
}

func objectID(kind string, data []byte) ObjectID {
	hasher := blake3.New()
	hasher.WriteString(kind + " " + strconv.Itoa(len(data)) + "\x00")
	hasher.Write(data)
	return ObjectID(hex.EncodeToString(hasher.Sum(nil)))
}

// HasCommit reports whether commit was created by this store.
func (s *MemoryStore) HasCommit(ctx context.Context, commit CommitRef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.commits[commit]
	return ok, nil
}

// RootTree returns the root tree of commit.
func (s *MemoryStore) RootTree(ctx context.Context, commit CommitRef) (ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.commits[commit]
	if !ok {
		return "", &NotFoundError{Reason: fmt.Sprintf("commit %q does not exist", commit)}
	}
	return tree, nil
}

// ReadTree returns a copy of the entries of tree id.
func (s *MemoryStore) ReadTree(ctx context.Context, id ObjectID) ([]TreeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.trees[id]
	if !ok {
		return nil, &NotFoundError{Reason: fmt.Sprintf("tree %q does not exist", id)}
	}
	return append([]TreeEntry(nil), entries...), nil
}

// ReadBlob returns a copy of the contents of blob id.
func (s *MemoryStore) ReadBlob(ctx context.Context, id ObjectID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[id]
	if !ok {
		return nil, &NotFoundError{Reason: fmt.Sprintf("blob %q does not exist", id)}
	}
	return append([]byte(nil), data...), nil
}
