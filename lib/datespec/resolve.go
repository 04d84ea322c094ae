// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datespec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/courseware/lib/clock"
	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/event"
	"github.com/bureau-foundation/courseware/lib/validation"
)

// timestampLayouts are the literal timestamp forms accepted in place
// of a datespec. Layouts without a zone are read in the content time
// zone.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{"2006-1-2T15:4:5.999999999Z07:00", true},
	{"2006-1-2 15:4:5.999999999Z07:00", true},
	{"2006-1-2 15:4:5.999999999 -07:00", true},
	{"2006-1-2T15:4:5.999999999", false},
	{"2006-1-2 15:4:5.999999999", false},
	{"2006-1-2T15:4", false},
	{"2006-1-2 15:4", false},
}

// Config configures a Resolver.
type Config struct {
	// Events looks up course events. Nil treats every event as
	// missing.
	Events event.Finder

	// Location is the content time zone. Nil means UTC.
	Location *time.Location

	// Clock supplies "now". Nil uses the wall clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Resolver evaluates datespecs against course events.
type Resolver struct {
	events   event.Finder
	location *time.Location
	clock    clock.Clock
	logger   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(config Config) *Resolver {
	location := config.Location
	if location == nil {
		location = time.UTC
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		events:   config.Events,
		location: location,
		clock:    clock.OrReal(config.Clock),
		logger:   logger,
	}
}

// Location returns the content time zone.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Now returns the current time.
func (r *Resolver) Now() time.Time {
	return r.clock.Now()
}

// Parse resolves a datespec as it appears in a document: a string, or
// a time value the document already carried. Strings that are complete
// timestamps are returned as-is, localized to the content time zone
// when they carry no zone. A nil value yields the zero time and a nil
// error; callers treat it as "no date".
func (r *Resolver) Parse(ctx context.Context, c *course.Course, value any, vctx *validation.Context, location string) (time.Time, error) {
	switch value := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return value, nil
	case string:
		if timestamp, ok := r.parseTimestamp(strings.TrimSpace(value)); ok {
			return timestamp, nil
		}
		spec, err := Compile(value)
		if err != nil {
			return time.Time{}, err
		}
		return r.Resolve(ctx, c, spec, vctx, location)
	default:
		return time.Time{}, &InvalidError{
			Spec:   fmt.Sprint(value),
			Reason: fmt.Sprintf("expected a string or timestamp, got %T", value),
		}
	}
}

func (r *Resolver) parseTimestamp(text string) (time.Time, bool) {
	for _, candidate := range timestampLayouts {
		var (
			timestamp time.Time
			err       error
		)
		if candidate.zoned {
			timestamp, err = time.Parse(candidate.layout, text)
		} else {
			timestamp, err = time.ParseInLocation(candidate.layout, text, r.location)
		}
		if err == nil {
			return timestamp, true
		}
	}
	return time.Time{}, false
}

// Resolve evaluates a compiled spec. Without a course every event
// resolves to now. A missing event also resolves to now and records a
// warning; an end-relative reference to an event without an end time
// uses the start time and records a warning. Postprocessors are not
// applied to these "now" fallbacks.
func (r *Resolver) Resolve(ctx context.Context, c *course.Course, spec *Spec, vctx *validation.Context, location string) (time.Time, error) {
	if spec.Date != nil {
		return r.apply(spec, spec.Date.In(r.location)), nil
	}
	if spec.Event == nil {
		return time.Time{}, &InvalidError{Spec: spec.Source, Reason: "empty specification"}
	}
	if c == nil {
		return r.clock.Now(), nil
	}

	ref := spec.Event
	found, err := r.findEvent(ctx, c, ref)
	if errors.Is(err, event.ErrNotFound) {
		vctx.AddWarning(location, "unrecognized date/time specification: '%s' (interpreted as 'now')", spec.Source)
		r.logger.Warn("unrecognized datespec, using now",
			"course", c.ID,
			"datespec", spec.Source,
			"location", location,
		)
		return r.clock.Now(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("resolving %q: %w", spec.Source, err)
	}

	result := found.Time
	if ref.End {
		if found.EndTime != nil {
			result = *found.EndTime
		} else {
			vctx.AddWarning(location, "event '%s' has no end time, using start time instead", spec.Source)
		}
	}
	return r.apply(spec, result), nil
}

func (r *Resolver) findEvent(ctx context.Context, c *course.Course, ref *EventRef) (event.Event, error) {
	if r.events == nil {
		return event.Event{}, event.ErrNotFound
	}
	return r.events.FindEvent(ctx, c.ID, ref.Kind, ref.Ordinal)
}

func (r *Resolver) apply(spec *Spec, t time.Time) time.Time {
	for _, postprocessor := range spec.Postprocessors {
		t = postprocessor.Apply(t, r.location)
	}
	return t
}
