// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package markup renders course Markdown to HTML.
//
// Rendering runs the template layer first (see lib/macro), then
// converts with goldmark: GitHub-flavored tables and strikethrough,
// definition lists, footnotes, raw HTML, and chroma highlighting of
// fenced code. Internal URLs such as "staticpage:syllabus" or
// "media:img/logo.png" are rewritten through a [URLBuilder], both in
// Markdown links and inside raw HTML. A URL that cannot be built turns
// into an inert data: URL rather than failing the page.
//
// Rendered HTML for course pages is cached under the markup kind of
// lib/cache, keyed by course, commit and a BLAKE3 digest of the
// source text.
package markup
