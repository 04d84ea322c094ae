// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of "now" for content
// resolution.
//
// Visibility rules and date specifications are evaluated against the
// current time, and unresolvable event references degrade to it.
// Production code accepts a Clock instead of calling time.Now
// directly. In production, Real() provides the standard library
// behavior. In tests, Fake() provides a clock that stands still until
// Set or Advance is called.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	resolver := datespec.Resolver{Clock: c}
//	c.Advance(48 * time.Hour)
package clock
