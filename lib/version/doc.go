// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for courseware
// binaries and the runtime tag that scopes byte-level cache entries.
//
// # Build information
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs.
//
// # Runtime tag
//
// [RuntimeTag] returns the Go toolchain's major.minor version ("1.25").
// Cached raw blob bytes are keyed with it so that a cache shared between
// processes built with different toolchains never hands one of them an
// entry it did not write.
package version
