// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for courseware
// packages.
//
// [Repository] builds an in-memory course repository from a map of
// file paths to contents and returns a handle plus the commit that
// holds them. Each call uses a fresh store with a unique identity
// (see [UniqueID]), so cache keys never collide between tests that
// share a cache backend.
//
// [GitRepository] creates a real on-disk git repository for tests
// that exercise the git CLI path. It skips the test when git is not
// installed.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that individual tests do not
// need direct time.After calls.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
