// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/courseware/lib/repo"
)

// Repository commits files to a new in-memory store and returns a
// handle on it together with the commit reference.
//
//	repository, commit := testutil.Repository(t, map[string]string{
//	    "course.yml": "chunks: []\n",
//	})
func Repository(t testing.TB, files map[string]string) (*repo.Repository, repo.CommitRef) {
	t.Helper()
	store := repo.NewMemoryStore(UniqueID("memory"))
	commit := Commit(t, store, files)
	return repo.New(store), commit
}

// Commit adds another commit to an existing in-memory store.
func Commit(t testing.TB, store *repo.MemoryStore, files map[string]string) repo.CommitRef {
	t.Helper()
	contents := make(map[string][]byte, len(files))
	for path, content := range files {
		contents[path] = []byte(content)
	}
	commit, err := store.Commit(contents)
	if err != nil {
		t.Fatalf("committing fixture files: %v", err)
	}
	return commit
}

// GitRepository creates a git working tree in a temporary directory
// containing files in a single commit and returns the directory and
// the commit hash. The directory is removed when the test completes.
func GitRepository(t testing.TB, files map[string]string) (string, repo.CommitRef) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	directory := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		command := exec.Command("git", append([]string{"-C", directory}, args...)...)
		command.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test",
			"GIT_AUTHOR_EMAIL=test@test.local",
			"GIT_COMMITTER_NAME=Test",
			"GIT_COMMITTER_EMAIL=test@test.local",
		)
		output, err := command.CombinedOutput()
		if err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, output)
		}
		return strings.TrimSpace(string(output))
	}

	run("init", "--quiet")
	for name, content := range files {
		path := filepath.Join(directory, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	run("add", "--all")
	run("commit", "--quiet", "-m", "fixture")
	return directory, repo.CommitRef(run("rev-parse", "HEAD"))
}
