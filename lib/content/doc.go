// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package content turns course repository files into the views a web
// layer shows: static pages with their rule-filtered chunks, flow
// descriptors, and flow page handlers.
//
// A [Loader] wires the lower layers together. Documents are read and
// macro-expanded through lib/macro (with its cache), normalized by
// lib/document, evaluated against the viewer by lib/rules and
// lib/datespec, and rendered by lib/markup. Every operation takes the
// repository and commit explicitly; a Loader holds no per-course state
// and is safe for concurrent use.
package content
