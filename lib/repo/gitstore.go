// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/bureau-foundation/courseware/lib/git"
)

// hashPattern accepts abbreviated and full SHA-1/SHA-256 hex hashes.
// Anything else is rejected before it reaches the git command line.
var hashPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

// GitStore reads objects from an on-disk git repository.
type GitStore struct {
	repository *git.Repository
}

// OpenGit returns a store for the git repository at dir. The directory
// must exist; whether it is a valid repository is discovered on first
// read.
func OpenGit(dir string) (*GitStore, error) {
	absolute, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving repository path %s: %w", dir, err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening repository: %s is not a directory", absolute)
	}
	return &GitStore{repository: git.NewRepository(absolute)}, nil
}

// Identity returns the absolute repository directory.
func (s *GitStore) Identity() string {
	return s.repository.Dir()
}

// Close is a no-op: every read is a separate git process.
func (s *GitStore) Close() error {
	return nil
}

// HasCommit reports whether commit names a commit in the repository.
func (s *GitStore) HasCommit(ctx context.Context, commit CommitRef) (bool, error) {
	if !hashPattern.MatchString(string(commit)) {
		return false, nil
	}
	return s.repository.ObjectExists(ctx, string(commit), "commit")
}

// RootTree returns the root tree hash of commit.
func (s *GitStore) RootTree(ctx context.Context, commit CommitRef) (ObjectID, error) {
	exists, err := s.HasCommit(ctx, commit)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &NotFoundError{Reason: fmt.Sprintf("commit %q does not exist", commit)}
	}
	tree, err := s.repository.CommitTree(ctx, string(commit))
	if err != nil {
		return "", err
	}
	return ObjectID(tree), nil
}

// ReadTree lists the tree with the given hash, sorted by name.
func (s *GitStore) ReadTree(ctx context.Context, id ObjectID) ([]TreeEntry, error) {
	if !hashPattern.MatchString(string(id)) {
		return nil, &NotFoundError{Reason: fmt.Sprintf("tree %q does not exist", id)}
	}
	listing, err := s.repository.ListTree(ctx, string(id))
	if err != nil {
		return nil, err
	}
	entries := make([]TreeEntry, 0, len(listing))
	for _, item := range listing {
		mode, err := strconv.ParseUint(item.Mode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("tree %s: entry %q has invalid mode %q", id, item.Name, item.Mode)
		}
		entries = append(entries, TreeEntry{
			Name: item.Name,
			Mode: Mode(mode),
			ID:   ObjectID(item.Hash),
		})
	}
	// git orders directories as if their names ended in "/", which
	// Tree.Lookup's binary search does not expect.
	sortEntries(entries)
	return entries, nil
}

// ReadBlob returns the contents of the blob with the given hash.
func (s *GitStore) ReadBlob(ctx context.Context, id ObjectID) ([]byte, error) {
	if !hashPattern.MatchString(string(id)) {
		return nil, &NotFoundError{Reason: fmt.Sprintf("blob %q does not exist", id)}
	}
	return s.repository.ReadBlob(ctx, string(id))
}
