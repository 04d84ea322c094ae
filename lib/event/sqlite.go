// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/courseware/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	course_id   TEXT NOT NULL,
	kind        TEXT NOT NULL,
	ordinal     INTEGER,
	start_ns    INTEGER NOT NULL,
	end_ns      INTEGER
);
CREATE INDEX IF NOT EXISTS events_by_kind ON events (course_id, kind);
`

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. Required.
	Path string

	// PoolSize is passed to sqlitepool. Zero selects its default.
	PoolSize int

	Logger *slog.Logger
}

// SQLiteStore keeps events in a SQLite database. Times are stored as
// Unix nanoseconds and returned in UTC.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) an event database.
func OpenSQLite(config SQLiteConfig) (*SQLiteStore, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     config.Path,
		PoolSize: config.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	return &SQLiteStore{pool: pool, logger: logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

// Put adds or replaces events in one transaction. An event replaces
// any stored event with the same course, kind and ordinal.
func (s *SQLiteStore) Put(ctx context.Context, events ...Event) (err error) {
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return err
		}
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("event store: put: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("event store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, event := range events {
		ordinal := ordinalArg(event.Ordinal)
		err = sqlitex.Execute(conn,
			`DELETE FROM events WHERE course_id = ? AND kind = ? AND ordinal IS ?`,
			&sqlitex.ExecOptions{Args: []any{event.CourseID, event.Kind, ordinal}})
		if err != nil {
			return fmt.Errorf("event store: replacing %s: %w", event.Name(), err)
		}

		var end any
		if event.EndTime != nil {
			end = event.EndTime.UnixNano()
		}
		err = sqlitex.Execute(conn,
			`INSERT INTO events (course_id, kind, ordinal, start_ns, end_ns) VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{event.CourseID, event.Kind, ordinal, event.Time.UnixNano(), end}})
		if err != nil {
			return fmt.Errorf("event store: inserting %s: %w", event.Name(), err)
		}
	}

	s.logger.Debug("stored events", "count", len(events))
	return nil
}

// FindEvent implements Finder.
func (s *SQLiteStore) FindEvent(ctx context.Context, courseID, kind string, ordinal *int) (Event, error) {
	var events []Event
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT course_id, kind, ordinal, start_ns, end_ns FROM events
			 WHERE course_id = ? AND kind = ? AND ordinal IS ?
			 LIMIT 1`,
			&sqlitex.ExecOptions{
				Args: []any{courseID, kind, ordinalArg(ordinal)},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					events = append(events, scanEvent(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return Event{}, fmt.Errorf("event store: find: %w", err)
	}
	if len(events) == 0 {
		return Event{}, notFound(courseID, kind, ordinal)
	}
	return events[0], nil
}

// Events returns the events of a course ordered by time.
func (s *SQLiteStore) Events(ctx context.Context, courseID string) ([]Event, error) {
	var events []Event
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT course_id, kind, ordinal, start_ns, end_ns FROM events
			 WHERE course_id = ?
			 ORDER BY start_ns, kind, ordinal`,
			&sqlitex.ExecOptions{
				Args: []any{courseID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					events = append(events, scanEvent(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("event store: list: %w", err)
	}
	return events, nil
}

// Columns: course_id(0), kind(1), ordinal(2), start_ns(3), end_ns(4).
func scanEvent(stmt *sqlite.Stmt) Event {
	event := Event{
		CourseID: stmt.ColumnText(0),
		Kind:     stmt.ColumnText(1),
		Time:     time.Unix(0, stmt.ColumnInt64(3)).UTC(),
	}
	if !stmt.ColumnIsNull(2) {
		event.Ordinal = Ordinal(stmt.ColumnInt(2))
	}
	if !stmt.ColumnIsNull(4) {
		end := time.Unix(0, stmt.ColumnInt64(4)).UTC()
		event.EndTime = &end
	}
	return event
}

func ordinalArg(ordinal *int) any {
	if ordinal == nil {
		return nil
	}
	return *ordinal
}
