// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package validation accumulates non-fatal content diagnostics.
//
// A validation pass walks course content the same way a page view
// does, but instead of silently degrading on soft problems (an event
// reference that does not resolve, an end-relative date on an event
// without an end time) it records a [Warning] against the location
// being checked. Hard problems are still returned as errors by the
// package that found them.
//
// A nil *Context is valid everywhere and records nothing, so content
// code passes its context through unconditionally.
package validation

import (
	"fmt"
	"regexp"
	"sync"
)

// Warning is one non-fatal diagnostic attached to a content location
// such as "flows/quiz.yml, rule 2".
type Warning struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	if w.Location == "" {
		return w.Message
	}
	return w.Location + ": " + w.Message
}

// Context collects warnings from concurrent resolution goroutines.
type Context struct {
	mu       sync.Mutex
	warnings []Warning
}

// New returns an empty validation context.
func New() *Context {
	return &Context{}
}

// AddWarning records a warning. Calls on a nil Context are no-ops.
func (c *Context) AddWarning(location, format string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns a copy of the recorded warnings in insertion order.
func (c *Context) Warnings() []Warning {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Enabled reports whether c records anything.
func (c *Context) Enabled() bool {
	return c != nil
}

var identifierPattern = regexp.MustCompile(`^\w+$`)

// InvalidIdentifierError reports a name that is not a word-character
// identifier.
type InvalidIdentifierError struct {
	Location string
	Value    string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("%s: invalid identifier %q", e.Location, e.Value)
}

// Identifier checks that value consists only of word characters
// ([A-Za-z0-9_]). It returns an *InvalidIdentifierError otherwise.
func Identifier(location, value string) error {
	if !identifierPattern.MatchString(value) {
		return &InvalidIdentifierError{Location: location, Value: value}
	}
	return nil
}
