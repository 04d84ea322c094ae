// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/courseware/lib/repo"
)

// ErrIncludeDepth is wrapped by a TemplateError when includes nest
// deeper than the configured maximum (usually an include cycle).
var ErrIncludeDepth = errors.New("maximum include depth exceeded")

// TemplateError reports a failure to expand the template layer of a
// document: a syntax error, an undefined variable, a missing include,
// or include recursion.
type TemplateError struct {
	Path   string
	Commit repo.CommitRef
	Err    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error in %s at %s: %v", describePath(e.Path), e.Commit, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// StructuralError reports that expanded text is not valid YAML.
type StructuralError struct {
	Path   string
	Commit repo.CommitRef
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid YAML in %s at %s: %v", describePath(e.Path), e.Commit, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

func describePath(path string) string {
	if path == "" {
		return "<inline>"
	}
	return path
}
