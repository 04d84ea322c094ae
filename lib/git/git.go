// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for reading course
// repositories. Course content lives in ordinary git repositories
// (bare or with a working tree) and is only ever read at a specific
// commit, so this package exposes the handful of plumbing commands
// needed to walk trees and read blobs. All commands target a specific
// repository directory via the -C flag, which is automatically
// injected by all Repository methods.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Repository represents a git repository at a specific directory. All
// operations target this directory via "git -C <dir>". There is no
// default directory: callers must always specify which repository
// they mean.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
// The directory may be a bare repository or a working tree.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	output, err := r.RunBytes(ctx, args...)
	return string(output), err
}

// RunBytes is Run for commands whose stdout is binary (blob contents).
func (r *Repository) RunBytes(ctx context.Context, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ObjectExists reports whether object names an object of the given
// type ("commit", "tree", "blob"). A missing object is not an error;
// failure to run git at all is.
func (r *Repository) ObjectExists(ctx context.Context, object, objectType string) (bool, error) {
	fullArgs := []string{"-C", r.dir, "cat-file", "-e", object + "^{" + objectType + "}"}
	command := exec.CommandContext(ctx, "git", fullArgs...)
	err := command.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("git cat-file -e in %s: %w", r.dir, err)
}

// CommitTree returns the root tree hash of commit.
func (r *Repository) CommitTree(ctx context.Context, commit string) (string, error) {
	output, err := r.Run(ctx, "rev-parse", "--verify", commit+"^{tree}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// ReadBlob returns the contents of the blob with the given hash.
func (r *Repository) ReadBlob(ctx context.Context, hash string) ([]byte, error) {
	return r.RunBytes(ctx, "cat-file", "blob", hash)
}

// TreeEntry is one line of "git ls-tree" output.
type TreeEntry struct {
	Mode string
	Type string
	Hash string
	Name string
}

// ListTree returns the immediate entries of the tree with the given
// hash, in git's order (sorted by name).
func (r *Repository) ListTree(ctx context.Context, hash string) ([]TreeEntry, error) {
	output, err := r.RunBytes(ctx, "ls-tree", "-z", hash)
	if err != nil {
		return nil, err
	}
	return parseTreeListing(output)
}

// parseTreeListing parses NUL-terminated "<mode> SP <type> SP <hash> TAB <name>"
// records.
func parseTreeListing(output []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	for len(output) > 0 {
		end := bytes.IndexByte(output, 0)
		if end < 0 {
			end = len(output)
		}
		record := string(output[:end])
		output = output[min(end+1, len(output)):]
		if record == "" {
			continue
		}

		header, name, ok := strings.Cut(record, "\t")
		if !ok {
			return nil, fmt.Errorf("malformed ls-tree record %q", record)
		}
		fields := strings.Fields(header)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed ls-tree header %q", header)
		}
		entries = append(entries, TreeEntry{
			Mode: fields[0],
			Type: fields[1],
			Hash: fields[2],
			Name: name,
		})
	}
	return entries, nil
}
