// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool used by
// courseware's local stores (currently the course event store).
//
// It wraps zombiezen.com/go/sqlite with fixed pragmas: WAL journal
// mode, NORMAL synchronous, a busy timeout for write contention, and
// memory-mapped reads. Callers [Pool.Take] a connection and [Pool.Put]
// it back, or use [Pool.With] for the common take/run/put sequence.
// Connections are not safe for concurrent use; each goroutine holds
// its own connection for the duration of its work.
//
// # Pragmas
//
//   - journal_mode=WAL: readers never block the writer.
//   - synchronous=NORMAL: transactions survive process crashes.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock.
//   - foreign_keys=OFF
//   - cache_size=-8192: 8 MB page cache per connection.
//   - mmap_size=268435456: 256 MB memory-mapped I/O for reads.
//   - temp_store=MEMORY
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/courseware/events.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.With(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{...})
//	})
//
// Stores write SQL directly, use sqlitex.Execute for cached statements
// and sqlitex.ImmediateTransaction for writes.
package sqlitepool
