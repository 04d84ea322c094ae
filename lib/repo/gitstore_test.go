// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func initGitRepository(t *testing.T, files map[string]string) (string, CommitRef) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) string {
		t.Helper()
		command := exec.Command("git", append([]string{"-C", dir}, args...)...)
		command.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@test.local",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@test.local",
		)
		output, err := command.CombinedOutput()
		if err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, output)
		}
		return strings.TrimSpace(string(output))
	}
	run("init", "--quiet")
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	run("add", "--all")
	run("commit", "--quiet", "-m", "content")
	return dir, CommitRef(run("rev-parse", "HEAD"))
}

func TestGitStore(t *testing.T) {
	t.Parallel()

	dir, commit := initGitRepository(t, map[string]string{
		"course.yml":     "chunks: []\n",
		"flows/quiz.yml": "title: Quiz\n",
		"flows.d/x.yml":  "x: 1\n",
	})
	store, err := OpenGit(dir)
	if err != nil {
		t.Fatalf("OpenGit: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	repository := New(store)

	blob, err := repository.Blob(ctx, commit, "flows/quiz.yml")
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	if string(blob.Data) != "title: Quiz\n" {
		t.Errorf("Blob = %q", blob.Data)
	}

	// "flows.d" sorts before "flows/" in git's own order; lookup must
	// still find both.
	if _, err := repository.Blob(ctx, commit, "flows.d/x.yml"); err != nil {
		t.Errorf("Blob(flows.d/x.yml): %v", err)
	}

	if _, err := repository.Blob(ctx, commit, "flows/none.yml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
	if _, err := repository.Blob(ctx, CommitRef(strings.Repeat("1", 40)), "course.yml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing commit error = %v, want ErrNotFound", err)
	}
	if _, err := repository.Blob(ctx, "--output=/tmp/x", "course.yml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-hash commit error = %v, want ErrNotFound", err)
	}

	exists, err := store.HasCommit(ctx, commit)
	if err != nil || !exists {
		t.Errorf("HasCommit = %v, %v", exists, err)
	}
	if !filepath.IsAbs(store.Identity()) {
		t.Errorf("Identity() = %q, want absolute path", store.Identity())
	}
}

func TestOpenGitMissingDirectory(t *testing.T) {
	t.Parallel()
	if _, err := OpenGit(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
