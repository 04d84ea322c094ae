// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"net/url"
	"strings"

	"github.com/bureau-foundation/courseware/lib/version"
)

// SchemaVersion is the leading tag of every key. Bump it whenever macro
// expansion, YAML parsing, normalization, or markup rendering changes
// output, so entries produced by older logic are never served.
const SchemaVersion = "cw1"

// Kind separates the namespaces of cached values.
type Kind string

const (
	// KindBytes is a raw blob.
	KindBytes Kind = "bytes"

	// KindDocument is a macro-expanded and parsed document.
	KindDocument Kind = "document"

	// KindMarkup is rendered HTML for a markup fragment.
	KindMarkup Kind = "markup"
)

// Key identifies a cached value.
type Key struct {
	Kind     Kind
	Identity string
	Path     string
	Commit   string

	// Extra components appended verbatim (e.g. a content digest).
	Extra []string
}

// String renders the backend key. Identity and path are query-escaped,
// so the separator can only appear between components. Byte entries
// also carry the Go runtime version, matching the process that wrote
// them.
func (k Key) String() string {
	parts := []string{
		SchemaVersion,
		string(k.Kind),
		url.QueryEscape(k.Identity),
		url.QueryEscape(k.Path),
		k.Commit,
	}
	if k.Kind == KindBytes {
		parts = append(parts, version.RuntimeTag())
	}
	parts = append(parts, k.Extra...)
	return strings.Join(parts, "|")
}
