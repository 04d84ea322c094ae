// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package repo resolves paths inside versioned course repositories.
//
// A course repository is a content-addressed object store: every
// commit names a root tree, trees map names to child trees or blobs,
// and nothing is ever mutated once written. The [Store] interface
// captures the handful of primitive reads that walking such a store
// needs. Two implementations ship with the package:
//
//   - [GitStore] reads an on-disk git repository through the git CLI
//     (see lib/git).
//   - [MemoryStore] holds objects in memory, keyed by BLAKE3 digests.
//     Tests and tooling build repositories with [MemoryStore.Commit].
//
// A [Repository] is the handle the rest of the module passes around.
// It wraps a Store and optionally scopes every path to a subdirectory
// (courses whose content lives below the repository root). The scoping
// is invisible to callers: Resolve prefixes paths, while Identity and
// Store always report the unwrapped store so cache keys do not depend
// on how the handle was constructed.
//
// Path resolution follows these rules:
//
//   - Paths are split on "/". Empty intermediate segments are skipped.
//   - Every non-terminal segment must name a tree.
//   - The empty path resolves to the root tree, if trees are allowed.
//   - Missing segments, descending into a blob, and a tree where a
//     blob is required all fail with an error matching [ErrNotFound].
package repo
