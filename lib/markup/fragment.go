// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/net/html"
)

// RewriteFragment applies RewriteAttributes to every start tag in an
// HTML fragment. Everything else, including tags that need no change,
// is copied byte for byte.
func (f *LinkFixer) RewriteFragment(fragment []byte) ([]byte, error) {
	var out bytes.Buffer
	tokenizer := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return out.Bytes(), nil
		}

		raw := append([]byte(nil), tokenizer.Raw()...)
		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		token := tokenizer.Token()
		rewritten := f.RewriteAttributes(token.Data, token.Attr)
		if attributesEqual(token.Attr, rewritten) {
			out.Write(raw)
			continue
		}
		token.Attr = rewritten
		out.WriteString(token.String())
	}
}

func attributesEqual(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
