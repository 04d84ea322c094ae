// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package access decides whether repository files may be served to a
// class of viewer. Each directory may carry an attributes file mapping
// access kinds to lists of filename patterns:
//
//	unenrolled: ["syllabus.pdf"]
//	student: ["*.ipynb", "hw?.pdf"]
//	in_exam: ["formulas.pdf"]
//
// A kind also sees everything granted to the kinds below it
// (instructor, ta, student, unenrolled). in_exam stands alone.
package access

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// AttributesFile is the per-directory attributes file name.
const AttributesFile = ".attributes.yml"

// Kind is an access kind.
type Kind string

const (
	// Public is an older spelling of Unenrolled.
	Public     Kind = "public"
	Unenrolled Kind = "unenrolled"
	Student    Kind = "student"
	TA         Kind = "ta"
	Instructor Kind = "instructor"
	InExam     Kind = "in_exam"
)

// grants lists, per kind, the attribute keys whose patterns it sees.
var grants = map[Kind][]Kind{
	InExam:     {InExam},
	Public:     {Public, Unenrolled},
	Unenrolled: {Public, Unenrolled},
	Student:    {Public, Unenrolled, Student},
	TA:         {Public, Unenrolled, Student, TA},
	Instructor: {Public, Unenrolled, Student, TA, Instructor},
}

// ParseKind converts an access kind name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(name)
	if _, ok := grants[kind]; !ok {
		return "", fmt.Errorf("unknown access kind %q", name)
	}
	return kind, nil
}

// Grants returns the attribute keys whose patterns kind may use.
func (k Kind) Grants() []Kind {
	return append([]Kind(nil), grants[k]...)
}

// Loader loads a macro-expanded YAML document. *macro.Expander
// implements it.
type Loader interface {
	Load(ctx context.Context, commit repo.CommitRef, path string) (document.Value, error)
}

// IsAccessibleAs reports whether the file at filePath may be served to
// kind. A directory without an attributes file grants nothing.
func IsAccessibleAs(ctx context.Context, loader Loader, commit repo.CommitRef, kind Kind, filePath string) (bool, error) {
	keys, ok := grants[kind]
	if !ok {
		return false, fmt.Errorf("unknown access kind %q", kind)
	}

	attributesPath := path.Join(path.Dir(filePath), AttributesFile)
	attributes, err := loader.Load(ctx, commit, attributesPath)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", attributesPath, err)
	}

	name := path.Base(filePath)
	for _, key := range keys {
		for _, pattern := range attributes.Field(string(key)).List() {
			text, ok := pattern.AsString()
			if !ok {
				continue
			}
			if matchName(text, name) {
				return true, nil
			}
		}
	}
	return false, nil
}

// matchName is shell-style matching of a file name: * and ? plus
// bracket classes, where both [!...] and [^...] negate. A malformed
// pattern matches nothing.
func matchName(pattern, name string) bool {
	pattern = strings.ReplaceAll(pattern, "[!", "[^")
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}
