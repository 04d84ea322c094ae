// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for cached values.
//
// Parsed course documents are stored in the content cache as CBOR.
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Identical documents therefore always encode to identical bytes, which
// keeps concurrent compute-and-store races on a cache miss harmless.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Decoding into an any-typed target yields map[string]any for maps and
// int64 for every integer. The document package normalizes those back
// to the shapes produced by the YAML decoder.
package codec
