// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"os"
	"reflect"

	"golang.org/x/term"
)

// WriteJSON writes value to stdout as JSON, indented when stdout is a
// terminal and compact (one document per line) otherwise.
func WriteJSON(value any) error {
	return EncodeJSON(os.Stdout, value, term.IsTerminal(int(os.Stdout.Fd())))
}

// EncodeJSON writes value to w. Nil slices are written as [] rather
// than null.
func EncodeJSON(w io.Writer, value any, indent bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(normalizeNilSlice(value))
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
