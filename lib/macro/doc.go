// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package macro expands templated course YAML and markup.
//
// Course authors write YAML with an embedded template layer
// (text/template syntax: {{ .var }}, {{ include "path" }}). Template
// delimiters collide with YAML in two places: block scalars, whose
// bodies routinely contain literal braces (code samples, LaTeX), and
// editor fold markers ("# {{{"). Expansion therefore runs in two
// passes:
//
//  1. A line scanner finds block-scalar headers and fold markers and
//     shields them. A shielded region is replaced by a placeholder
//     action that reproduces it byte-for-byte, so the template engine
//     never parses it. A block scalar opts in to templating with a
//     "J" right after its indicator ("body: |J"); the J is removed
//     from the output.
//  2. The result is executed as a template. Referencing an undefined
//     variable is an error, and include re-enters this pipeline for
//     the named file at the same commit, up to a maximum depth.
//
// Documents that contain explicit [JINJA] ... [/JINJA] regions use an
// older convention: only those regions are templated and the implicit
// scanner does not run at all.
//
// Errors from expansion are [*TemplateError]; errors from parsing the
// expanded YAML are [*StructuralError]. Both carry the path and
// commit of the offending document.
package macro
