// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pagetype_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/macro"
	"github.com/bureau-foundation/courseware/lib/pagetype"
	"github.com/bureau-foundation/courseware/lib/repo"
	"github.com/bureau-foundation/courseware/lib/testutil"
)

const pagesModule = `
local Note = {}

function Note.title(page)
  return page.heading
end

function Note.body(page, location)
  return "**" .. page.text .. "**" .. #page.items
end

local Broken = {}

function Broken.body(page)
  error("broken on purpose")
end

local Escape = {}

function Escape.body(page)
  return io.open("/etc/passwd"):read("*a")
end

return { Note = Note, Broken = Broken, Escape = Escape }
`

const legacyModule = `
Legacy = {
  title = "Fixed title",
  body = function(page, location) return location end,
}
`

func newFixture(t *testing.T) (*pagetype.Registry, *macro.Expander, repo.CommitRef) {
	t.Helper()
	repository, commit := testutil.Repository(t, map[string]string{
		"code/pages.lua":  pagesModule,
		"code/legacy.lua": legacyModule,
		"code/syntax.lua": "local = 1\n",
	})
	registry := pagetype.NewRegistry(pagetype.Config{
		Binder: pagetype.LuaBinder{},
		Globals: map[string]pagetype.Factory{
			"plugins.Essay": func(location string, desc document.Value) (pagetype.Handler, error) {
				return nil, errors.New("not implemented")
			},
		},
	})
	return registry, macro.New(macro.Config{Repository: repository}), commit
}

func TestResolveOrigins(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		typeName string
		want     pagetype.Origin
	}{
		{"Page", pagetype.OriginBuiltin},
		{"plugins.Essay", pagetype.OriginGlobal},
		{"repo:pages.Note", pagetype.OriginRepository},
		{"repo:legacy.Legacy", pagetype.OriginRepository},
	}
	for _, test := range tests {
		t.Run(test.typeName, func(t *testing.T) {
			descriptor, err := registry.Resolve(ctx, source, commit, test.typeName)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if descriptor.Origin != test.want || descriptor.TypeName != test.typeName {
				t.Errorf("Resolve() = %+v, want origin %s", descriptor, test.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		typeName string
		is       error
	}{
		{"unknown name", "TextQuestion", pagetype.ErrNotFound},
		{"too many components", "repo:pages.sub.Note", pagetype.ErrNotFound},
		{"missing class name", "repo:pages", pagetype.ErrNotFound},
		{"missing module", "repo:absent.Note", repo.ErrNotFound},
		{"missing class", "repo:pages.Essay", pagetype.ErrNotFound},
		{"syntax error", "repo:syntax.Thing", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := registry.Resolve(ctx, source, commit, test.typeName)
			var resolutionErr *pagetype.ResolutionError
			if !errors.As(err, &resolutionErr) {
				t.Fatalf("Resolve() error = %v, want *ResolutionError", err)
			}
			if resolutionErr.TypeName != test.typeName {
				t.Errorf("TypeName = %q, want %q", resolutionErr.TypeName, test.typeName)
			}
			if test.is != nil && !errors.Is(err, test.is) {
				t.Errorf("Resolve() error = %v, want errors.Is %v", err, test.is)
			}
		})
	}
}

func TestRepositoryTypesDisabledWithoutBinder(t *testing.T) {
	_, source, commit := newFixture(t)
	registry := pagetype.NewRegistry(pagetype.Config{})
	if _, err := registry.Resolve(context.Background(), source, commit, "repo:pages.Note"); err == nil {
		t.Error("Resolve succeeded without a binder")
	}
}

func TestBuiltinPage(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	handler, err := registry.Instantiate(ctx, source, commit, "flows/quiz.yml: page intro", document.Of(map[string]any{
		"type":    "Page",
		"id":      "intro",
		"content": "# Welcome\n\nRead this first.\n",
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if handler.TypeName() != pagetype.PageTypeName {
		t.Errorf("TypeName() = %q", handler.TypeName())
	}
	if title, err := handler.Title(ctx); err != nil || title != "Welcome" {
		t.Errorf("Title() = (%q, %v), want Welcome", title, err)
	}
	if body, err := handler.Body(ctx); err != nil || body != "# Welcome\n\nRead this first.\n" {
		t.Errorf("Body() = (%q, %v)", body, err)
	}

	handler, err = registry.Instantiate(ctx, source, commit, "here", document.Of(map[string]any{
		"type":    "Page",
		"title":   "Explicit",
		"content": "no heading",
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if title, _ := handler.Title(ctx); title != "Explicit" {
		t.Errorf("Title() = %q, want Explicit", title)
	}

	handler, err = registry.Instantiate(ctx, source, commit, "here", document.Of(map[string]any{
		"type":    "Page",
		"content": "no heading",
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if _, err := handler.Title(ctx); err == nil {
		t.Error("Title() without a heading succeeded")
	}
}

func TestInstantiateErrors(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		desc map[string]any
	}{
		{"no type", map[string]any{"content": "x"}},
		{"content not a string", map[string]any{"type": "Page", "content": []any{"x"}}},
		{"title not a string", map[string]any{"type": "Page", "content": "x", "title": 3}},
		{"factory failure", map[string]any{"type": "plugins.Essay"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := registry.Instantiate(ctx, source, commit, "here", document.Of(test.desc))
			var resolutionErr *pagetype.ResolutionError
			if !errors.As(err, &resolutionErr) {
				t.Errorf("Instantiate() error = %v, want *ResolutionError", err)
			}
		})
	}
}

func TestLuaHandlers(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	note, err := registry.Instantiate(ctx, source, commit, "flows/f.yml: page n", document.Of(map[string]any{
		"type":    "repo:pages.Note",
		"heading": "Hi",
		"text":    "bold",
		"items":   []any{1, 2},
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if note.TypeName() != "repo:pages.Note" {
		t.Errorf("TypeName() = %q", note.TypeName())
	}
	if title, err := note.Title(ctx); err != nil || title != "Hi" {
		t.Errorf("Title() = (%q, %v), want Hi", title, err)
	}
	if body, err := note.Body(ctx); err != nil || body != "**bold**2" {
		t.Errorf("Body() = (%q, %v), want **bold**2", body, err)
	}

	legacy, err := registry.Instantiate(ctx, source, commit, "flows/f.yml: page l", document.Of(map[string]any{
		"type": "repo:legacy.Legacy",
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if title, err := legacy.Title(ctx); err != nil || title != "Fixed title" {
		t.Errorf("Title() = (%q, %v)", title, err)
	}
	if body, err := legacy.Body(ctx); err != nil || body != "flows/f.yml: page l" {
		t.Errorf("Body() = (%q, %v), want the location", body, err)
	}
}

func TestLuaHandlerFailures(t *testing.T) {
	registry, source, commit := newFixture(t)
	ctx := context.Background()

	for _, typeName := range []string{"repo:pages.Broken", "repo:pages.Escape"} {
		t.Run(typeName, func(t *testing.T) {
			handler, err := registry.Instantiate(ctx, source, commit, "here", document.Of(map[string]any{
				"type": typeName,
			}))
			if err != nil {
				t.Fatalf("Instantiate: %v", err)
			}
			if _, err := handler.Body(ctx); err == nil {
				t.Error("Body() succeeded")
			}
			if _, err := handler.Title(ctx); err == nil {
				t.Error("Title() without a title field succeeded")
			}
		})
	}
}

func TestLuaHandlerCanceled(t *testing.T) {
	registry, source, commit := newFixture(t)
	handler, err := registry.Instantiate(context.Background(), source, commit, "here", document.Of(map[string]any{
		"type": "repo:pages.Note", "heading": "Hi", "text": "t", "items": []any{},
	}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := handler.Body(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Body() error = %v, want context.Canceled", err)
	}
}

func TestLuaRunawayCodeHonorsDeadline(t *testing.T) {
	t.Run("module", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := pagetype.LuaBinder{}.Bind(ctx, "code/spin.lua", []byte("while true do end"), "Spin")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Bind() error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("method", func(t *testing.T) {
		code := []byte(`
Spin = {
  body = function(page)
    if page.spin then
      while true do end
    end
    return "done"
  end,
}
`)
		factory, err := pagetype.LuaBinder{}.Bind(context.Background(), "code/spin.lua", code, "Spin")
		if err != nil {
			t.Fatalf("Bind: %v", err)
		}
		spinning, err := factory("here", document.Of(map[string]any{"spin": true}))
		if err != nil {
			t.Fatalf("factory: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := spinning.Body(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Body() error = %v, want context.DeadlineExceeded", err)
		}

		// The class's sandbox keeps working after an interrupted call.
		quiet, err := factory("here", document.Of(map[string]any{}))
		if err != nil {
			t.Fatalf("factory: %v", err)
		}
		if body, err := quiet.Body(context.Background()); err != nil || body != "done" {
			t.Errorf("Body() = (%q, %v), want done", body, err)
		}
	})
}
