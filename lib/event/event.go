// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event stores course events, the named instants and intervals
// that date specifications refer to ("homework 3", "end:exam"). An
// event is identified by course, kind and an optional ordinal.
package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// ErrNotFound is returned by Finder.FindEvent when no event matches.
var ErrNotFound = errors.New("event not found")

// Event is a course event.
type Event struct {
	CourseID string
	Kind     string

	// Ordinal distinguishes numbered events of the same kind. Nil for
	// an event that is referred to by kind alone.
	Ordinal *int

	Time    time.Time
	EndTime *time.Time
}

// Name renders the event the way datespecs refer to it.
func (e Event) Name() string {
	if e.Ordinal == nil {
		return e.Kind
	}
	return e.Kind + " " + strconv.Itoa(*e.Ordinal)
}

// Validate checks the identifying fields.
func (e Event) Validate() error {
	if e.CourseID == "" {
		return errors.New("event has no course")
	}
	if e.Kind == "" {
		return errors.New("event has no kind")
	}
	if e.Time.IsZero() {
		return fmt.Errorf("event %s has no time", e.Name())
	}
	if e.EndTime != nil && e.EndTime.Before(e.Time) {
		return fmt.Errorf("event %s ends before it starts", e.Name())
	}
	return nil
}

// Finder looks up events. FindEvent returns an error wrapping
// ErrNotFound when no event matches.
type Finder interface {
	FindEvent(ctx context.Context, courseID, kind string, ordinal *int) (Event, error)
}

// Ordinal returns a pointer to n, for building lookups.
func Ordinal(n int) *int {
	return &n
}

type identity struct {
	course     string
	kind       string
	ordinal    int
	hasOrdinal bool
}

func identityOf(courseID, kind string, ordinal *int) identity {
	id := identity{course: courseID, kind: kind}
	if ordinal != nil {
		id.ordinal = *ordinal
		id.hasOrdinal = true
	}
	return id
}

// MemoryStore is an in-process Finder, used by tests and by the CLI
// when no event database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[identity]Event
}

// NewMemoryStore returns a store holding events.
func NewMemoryStore(events ...Event) (*MemoryStore, error) {
	store := &MemoryStore{events: make(map[identity]Event)}
	if err := store.Put(context.Background(), events...); err != nil {
		return nil, err
	}
	return store, nil
}

// Put adds or replaces events.
func (s *MemoryStore) Put(_ context.Context, events ...Event) error {
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range events {
		s.events[identityOf(event.CourseID, event.Kind, event.Ordinal)] = event
	}
	return nil
}

// FindEvent implements Finder.
func (s *MemoryStore) FindEvent(_ context.Context, courseID, kind string, ordinal *int) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[identityOf(courseID, kind, ordinal)]
	if !ok {
		return Event{}, notFound(courseID, kind, ordinal)
	}
	return event, nil
}

// Events returns the events of a course ordered by time.
func (s *MemoryStore) Events(_ context.Context, courseID string) ([]Event, error) {
	s.mu.RLock()
	var events []Event
	for id, event := range s.events {
		if id.course == courseID {
			events = append(events, event)
		}
	}
	s.mu.RUnlock()
	sortEvents(events)
	return events, nil
}

func notFound(courseID, kind string, ordinal *int) error {
	name := Event{Kind: kind, Ordinal: ordinal}.Name()
	return fmt.Errorf("%w: %q in course %s", ErrNotFound, name, courseID)
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Time.Equal(events[j].Time) {
			return events[i].Time.Before(events[j].Time)
		}
		return events[i].Name() < events[j].Name()
	})
}
