// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/macro"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// DefaultCodeStyle is the chroma style used for fenced code blocks.
const DefaultCodeStyle = "friendly"

// Config configures a Renderer.
type Config struct {
	// URLs builds links for internal URLs. Nil selects PathURLs with
	// no prefix.
	URLs URLBuilder

	// Cache holds rendered HTML. Nil renders every time.
	Cache *cache.Cache

	// CodeStyle names a chroma style. Empty selects DefaultCodeStyle.
	CodeStyle string

	Logger *slog.Logger
}

// Renderer converts course markup (Markdown with template directives
// and internal links) to HTML.
type Renderer struct {
	urls     URLBuilder
	cache    *cache.Cache
	logger   *slog.Logger
	markdown goldmark.Markdown
}

// cacheTagger is implemented by URL builders whose output depends on
// configuration, so rendered HTML from different configurations does
// not share cache entries.
type cacheTagger interface {
	CacheTag() string
}

// New creates a Renderer.
func New(config Config) *Renderer {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	urls := config.URLs
	if urls == nil {
		urls = PathURLs{}
	}
	style := config.CodeStyle
	if style == "" {
		style = DefaultCodeStyle
	}

	markdown := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&linkTransformer{logger: logger}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(newNodeRenderer(style), 100)),
		),
	)

	return &Renderer{
		urls:     urls,
		cache:    config.Cache,
		logger:   logger,
		markdown: markdown,
	}
}

// Render expands text through the template layer of expander (when
// non-nil) with variables, converts the result to HTML and rewrites
// internal links against course c at commit. c may be nil for markup
// outside any course.
//
// Results are cached by course, commit and a digest of text when c is
// set and there are no variables.
func (r *Renderer) Render(ctx context.Context, c *course.Course, expander *macro.Expander, commit repo.CommitRef, text string, variables map[string]any) (string, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		expanded := text
		if expander != nil {
			var err error
			expanded, err = expander.ExpandMarkup(ctx, commit, text, variables)
			if err != nil {
				return nil, err
			}
		}
		return r.convert(c, commit, expanded)
	}

	if c == nil || len(variables) > 0 {
		rendered, err := compute(ctx)
		return string(rendered), err
	}

	digest := blake3.Sum256([]byte(text))
	key := cache.Key{
		Kind:     cache.KindMarkup,
		Identity: c.ID,
		Commit:   string(commit),
		Extra:    []string{hex.EncodeToString(digest[:])},
	}
	if tagger, ok := r.urls.(cacheTagger); ok {
		key.Extra = append(key.Extra, tagger.CacheTag())
	}
	rendered, err := r.cache.Bytes(ctx, key, compute)
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

// convert renders Markdown that has already been expanded.
func (r *Renderer) convert(c *course.Course, commit repo.CommitRef, source string) ([]byte, error) {
	fixer := &LinkFixer{
		Course: c,
		Commit: commit,
		URLs:   r.urls,
		Logger: r.logger,
	}
	pc := parser.NewContext()
	pc.Set(fixerKey, fixer)

	var out bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &out, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("rendering markup: %w", err)
	}
	return out.Bytes(), nil
}
