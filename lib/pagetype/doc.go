// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pagetype resolves the "type" of a flow page to a handler
// factory.
//
// A type name resolves, in order, to a built-in handler ("Page"), a
// globally registered handler, or, for names of the form
// "repo:<module>.<Class>", a handler whose code lives in the course
// repository at code/<module>.lua. Repository code is handed to a
// [Binder]; [LuaBinder] runs it in a sandboxed go-lua state that has
// no access to the filesystem or the host process.
package pagetype
