// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pagetype

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/markup"
)

// PageTypeName is the built-in markup page.
const PageTypeName = "Page"

// markupPage shows its "content" markup. The title is the "title" field
// or, failing that, the first heading of the content.
type markupPage struct {
	location string
	title    string
	content  string
}

func newMarkupPage(location string, desc document.Value) (Handler, error) {
	content, ok := desc.Field("content").AsString()
	if !ok {
		return nil, fmt.Errorf("%s: page content must be a string", location)
	}
	page := &markupPage{location: location, content: content}
	if title, ok := desc.Get("title"); ok {
		if page.title, ok = title.AsString(); !ok {
			return nil, fmt.Errorf("%s: page title must be a string", location)
		}
	}
	return page, nil
}

func (p *markupPage) TypeName() string { return PageTypeName }

func (p *markupPage) Title(ctx context.Context) (string, error) {
	if p.title != "" {
		return p.title, nil
	}
	if title, ok := markup.ExtractTitle(p.content); ok {
		return title, nil
	}
	return "", fmt.Errorf("%s: no title found", p.location)
}

func (p *markupPage) Body(ctx context.Context) (string, error) {
	return p.content, nil
}
