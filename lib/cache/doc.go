// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache memoizes content derived from immutable commits.
//
// Every cached value is a pure function of (store identity, path,
// commit, logic version). Commits never change, so an entry is valid
// forever once written and the cache never invalidates anything. The
// [Backend] may still evict on its own schedule; a miss simply
// recomputes.
//
// The cache is strictly an optimization. A nil *Cache, a Cache with no
// backend, a backend that errors, a key that is too long for the
// backend, and a value that is too large to store all produce the same
// result as a hit: the computed value. Backend failures are logged and
// otherwise ignored.
//
// Two entry points share one storage path:
//
//   - [Cache.Bytes] caches raw blob bytes.
//   - [Get] caches any CBOR-encodable value (parsed documents,
//     rendered markup) through lib/codec.
//
// Concurrent misses for the same key are collapsed with singleflight.
// Duplicate computation across processes is harmless because every
// computation of a key yields interchangeable values, and [Backend.Put]
// has add semantics (an existing entry is never overwritten).
//
// Values returned by the cache are shared between concurrent callers
// and must be treated as read-only.
package cache
