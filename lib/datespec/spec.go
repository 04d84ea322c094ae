// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datespec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/courseware/lib/validation"
)

// EndPrefix selects an event's end time instead of its start.
const EndPrefix = "end:"

var (
	datePattern     = regexp.MustCompile(`^([0-9]+)-([01][0-9])-([0-3][0-9])$`)
	trailingNumeral = regexp.MustCompile(`^(.*)\s+([0-9]+)$`)
	atTimePattern   = regexp.MustCompile(`^(.*)\s*@\s*([0-2]?[0-9]):([0-9][0-9])\s*$`)
	deltaPattern    = regexp.MustCompile(`^(.*)\s*([+-])\s*([0-9]+)\s+(weeks?|days?|hours?|minutes?)$`)
)

// InvalidError reports a malformed datespec.
type InvalidError struct {
	Spec   string
	Reason string
	Err    error
}

func (e *InvalidError) Error() string {
	message := fmt.Sprintf("invalid date specification %q", e.Spec)
	if e.Reason != "" {
		message += ": " + e.Reason
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// In returns midnight of d in location.
func (d Date) In(location *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, location)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// EventRef names a course event.
type EventRef struct {
	Kind    string
	Ordinal *int

	// End selects the event's end time.
	End bool
}

func (r EventRef) String() string {
	var text string
	if r.End {
		text = EndPrefix
	}
	text += r.Kind
	if r.Ordinal != nil {
		text += " " + strconv.Itoa(*r.Ordinal)
	}
	return text
}

// Postprocessor adjusts a resolved time.
type Postprocessor interface {
	// Apply adjusts t. zone is the content time zone.
	Apply(t time.Time, zone *time.Location) time.Time
	String() string
}

// AtTime sets the time of day in the content time zone. Seconds and
// sub-second digits are cleared.
type AtTime struct {
	Hour   int
	Minute int
}

func (a AtTime) Apply(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(), a.Hour, a.Minute, 0, 0, zone)
}

func (a AtTime) String() string {
	return fmt.Sprintf("@ %d:%02d", a.Hour, a.Minute)
}

// Unit is the unit of a Delta.
type Unit string

const (
	Weeks   Unit = "weeks"
	Days    Unit = "days"
	Hours   Unit = "hours"
	Minutes Unit = "minutes"
)

// Delta shifts a time by Count units. Weeks and days are calendar
// arithmetic in the content time zone, so a day across a daylight
// saving change keeps the wall-clock time.
type Delta struct {
	Count int
	Unit  Unit
}

func (d Delta) Apply(t time.Time, zone *time.Location) time.Time {
	switch d.Unit {
	case Weeks:
		return t.In(zone).AddDate(0, 0, 7*d.Count)
	case Days:
		return t.In(zone).AddDate(0, 0, d.Count)
	case Hours:
		return t.Add(time.Duration(d.Count) * time.Hour)
	default:
		return t.Add(time.Duration(d.Count) * time.Minute)
	}
}

func (d Delta) String() string {
	sign := "+"
	count := d.Count
	if count < 0 {
		sign = "-"
		count = -count
	}
	return fmt.Sprintf("%s %d %s", sign, count, d.Unit)
}

// Spec is a compiled datespec. Exactly one of Date and Event is set.
type Spec struct {
	Source string
	Date   *Date
	Event  *EventRef

	// Postprocessors in application order.
	Postprocessors []Postprocessor
}

// Compile parses text. Event kinds must be identifiers (word
// characters only).
func Compile(text string) (*Spec, error) {
	spec := &Spec{Source: text}
	core := strings.TrimSpace(text)

	for {
		rest, postprocessor, err := stripPostprocessor(core)
		if err != nil {
			return nil, &InvalidError{Spec: text, Err: err}
		}
		if postprocessor == nil {
			break
		}
		spec.Postprocessors = append([]Postprocessor{postprocessor}, spec.Postprocessors...)
		core = strings.TrimSpace(rest)
	}

	if match := datePattern.FindStringSubmatch(core); match != nil {
		date, err := parseDate(match)
		if err != nil {
			return nil, &InvalidError{Spec: text, Err: err}
		}
		spec.Date = &date
		return spec, nil
	}

	event := EventRef{}
	if strings.HasPrefix(core, EndPrefix) {
		event.End = true
		core = strings.TrimSpace(strings.TrimPrefix(core, EndPrefix))
	}
	event.Kind = core
	if match := trailingNumeral.FindStringSubmatch(core); match != nil {
		ordinal, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, &InvalidError{Spec: text, Reason: "ordinal out of range"}
		}
		event.Kind = strings.TrimSpace(match[1])
		event.Ordinal = &ordinal
	}
	if err := validation.Identifier("event kind", event.Kind); err != nil {
		return nil, &InvalidError{Spec: text, Err: err}
	}
	spec.Event = &event
	return spec, nil
}

// stripPostprocessor removes one postprocessor suffix from text. The
// time-of-day suffix is tried before the delta suffix.
func stripPostprocessor(text string) (string, Postprocessor, error) {
	if match := atTimePattern.FindStringSubmatch(text); match != nil {
		hour, _ := strconv.Atoi(match[2])
		minute, _ := strconv.Atoi(match[3])
		if hour >= 24 {
			return "", nil, fmt.Errorf("hour %d out of range", hour)
		}
		if minute >= 60 {
			return "", nil, fmt.Errorf("minute %d out of range", minute)
		}
		return match[1], AtTime{Hour: hour, Minute: minute}, nil
	}
	if match := deltaPattern.FindStringSubmatch(text); match != nil {
		count, err := strconv.Atoi(match[3])
		if err != nil {
			return "", nil, fmt.Errorf("count %s out of range", match[3])
		}
		if match[2] == "-" {
			count = -count
		}
		unit := match[4]
		if !strings.HasSuffix(unit, "s") {
			unit += "s"
		}
		return match[1], Delta{Count: count, Unit: Unit(unit)}, nil
	}
	return text, nil, nil
}

func parseDate(match []string) (Date, error) {
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return Date{}, fmt.Errorf("year %s out of range", match[1])
	}
	month, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	date := Date{Year: year, Month: time.Month(month), Day: day}

	// time.Date normalizes out-of-range fields; a round trip that
	// changes the date means the input was not a real date.
	check := date.In(time.UTC)
	if check.Year() != year || int(check.Month()) != month || check.Day() != day || year < 1 {
		return Date{}, fmt.Errorf("%s is not a calendar date", date)
	}
	return date, nil
}

// String renders the compiled form.
func (s *Spec) String() string {
	var parts []string
	if s.Date != nil {
		parts = append(parts, s.Date.String())
	} else if s.Event != nil {
		parts = append(parts, s.Event.String())
	}
	// Postprocessors render outermost last, which is application
	// order.
	for _, postprocessor := range s.Postprocessors {
		parts = append(parts, postprocessor.String())
	}
	return strings.Join(parts, " ")
}
