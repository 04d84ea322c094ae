// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package document represents parsed course YAML.
//
// Course content is schemaless YAML: page and flow descriptors carry
// optional fields whose presence is meaningful ("has rules" is not the
// same as "rules is empty"). [Value] wraps the decoded tree and gives
// explicit presence checks ([Value.Has], [Value.Get]) instead of
// zero-valued struct fields.
//
// The underlying representation is restricted to map[string]any,
// []any, string, int, float64, bool and nil. [Parse] produces exactly
// these shapes from YAML, and decoding a Value from CBOR (the content
// cache encoding) normalizes back to them, so a document read from the
// cache is structurally identical to a freshly parsed one. YAML
// timestamps are kept as their source text; the date parser in
// lib/datespec interprets them against the course time zone.
//
// Values are immutable by convention. [Value.With] and [Value.Without]
// return modified shallow copies.
package document
