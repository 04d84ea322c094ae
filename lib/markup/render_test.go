// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/macro"
	"github.com/bureau-foundation/courseware/lib/markup"
	"github.com/bureau-foundation/courseware/lib/testutil"
)

func TestRender(t *testing.T) {
	repository, commit := testutil.Repository(t, map[string]string{
		"snippets/note.md": "*included* note\n",
	})
	expander := macro.New(macro.Config{Repository: repository})
	renderer := markup.New(markup.Config{})
	c := &course.Course{ID: "7", Identifier: "cs101"}

	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "heading and internal link",
			input:    "# Hi\n\nTake the [quiz](flow:quiz1).\n",
			contains: []string{"<h1>Hi</h1>", `<a href="/course/cs101/flow/quiz1/start/">quiz</a>`},
		},
		{
			name:     "image from media",
			input:    "![logo](media:img/logo.png)\n",
			contains: []string{`src="/course/cs101/media/` + string(commit) + `/img/logo.png"`},
		},
		{
			name:     "table class",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |\n",
			contains: []string{`<table class="table table-condensed">`},
		},
		{
			name:     "raw HTML block",
			input:    "<div class=\"box\">\n<a href=\"staticpage:notes\">notes</a>\n</div>\n",
			contains: []string{`<a href="/course/cs101/page/notes/">notes</a>`, `<div class="box">`},
		},
		{
			name:     "inline raw HTML",
			input:    "Get <a href=\"repocur:data.csv\">the data</a> here.\n",
			contains: []string{`<a href="/course/cs101/f/data.csv">the data</a>`},
		},
		{
			name:     "highlighted code",
			input:    "```python\nprint(1)\n```\n",
			contains: []string{`class="chroma"`, "print"},
		},
		{
			name:     "definition list",
			input:    "Term\n: Definition\n",
			contains: []string{"<dl>", "<dt>Term</dt>", "<dd>Definition</dd>"},
		},
		{
			name:     "include",
			input:    "Before {{ include \"snippets/note.md\" }}",
			contains: []string{"<em>included</em> note"},
		},
		{
			name:     "template marker is removed",
			input:    "[JINJA]\nplain\n",
			contains: []string{"<p>plain</p>"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := renderer.Render(context.Background(), c, expander, commit, test.input, nil)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range test.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestRenderVariables(t *testing.T) {
	repository, commit := testutil.Repository(t, map[string]string{"x": "x"})
	expander := macro.New(macro.Config{Repository: repository})
	renderer := markup.New(markup.Config{})

	got, err := renderer.Render(context.Background(), nil, expander, commit, "Hello {{ .name }}", map[string]any{"name": "World"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "<p>Hello World</p>") {
		t.Errorf("Render() = %q", got)
	}

	if _, err := renderer.Render(context.Background(), nil, expander, commit, "{{ .missing }}", nil); err == nil {
		t.Error("Render with an undefined variable succeeded")
	}
}

func TestRenderWithoutExpander(t *testing.T) {
	renderer := markup.New(markup.Config{})
	got, err := renderer.Render(context.Background(), nil, nil, "", "[home](course:)", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, `href="/course/bogus-course-identifier/"`) {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderCaching(t *testing.T) {
	repository, commit := testutil.Repository(t, map[string]string{"x": "x"})
	expander := macro.New(macro.Config{Repository: repository})
	backend := cache.NewMemoryBackend(nil)
	renderer := markup.New(markup.Config{
		Cache: cache.New(cache.Config{Backend: backend, MaxBytes: 1 << 20}),
	})
	c := &course.Course{ID: "7", Identifier: "cs101"}
	ctx := context.Background()

	first, err := renderer.Render(ctx, c, expander, commit, "# Cached\n", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if backend.Len() != 1 {
		t.Fatalf("backend holds %d entries after first render, want 1", backend.Len())
	}
	second, err := renderer.Render(ctx, c, expander, commit, "# Cached\n", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Errorf("cached render %q differs from fresh %q", second, first)
	}
	if backend.Len() != 1 {
		t.Errorf("backend holds %d entries after repeat render, want 1", backend.Len())
	}

	if _, err := renderer.Render(ctx, c, expander, commit, "# {{ .x }}\n", map[string]any{"x": "y"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := renderer.Render(ctx, nil, expander, commit, "# Other\n", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if backend.Len() != 1 {
		t.Errorf("renders with variables or without a course were cached: %d entries", backend.Len())
	}
}

func TestWriteCodeCSS(t *testing.T) {
	var out strings.Builder
	if err := markup.WriteCodeCSS(&out, ""); err != nil {
		t.Fatalf("WriteCodeCSS: %v", err)
	}
	if !strings.Contains(out.String(), ".chroma") {
		t.Errorf("stylesheet has no chroma rules: %q", out.String())
	}
}
