// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command tree behind the courseware binary:
// nested commands with lazily built pflag flag sets, help output,
// typo suggestions for commands and flags, and the shared output and
// logging conventions every command follows.
package cli
