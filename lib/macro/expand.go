// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"text/template"

	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// DefaultMaxIncludeDepth bounds include nesting when Config leaves it
// unset.
const DefaultMaxIncludeDepth = 16

// explicitRegion matches a legacy [JINJA] ... [/JINJA] region. The
// delimiters must be alone on their lines.
var explicitRegion = regexp.MustCompile(`(?ms)^\[JINJA\]\s*$(.*?)^\[/JINJA\]\s*$`)

// markupPrefix marks markup that was written for the explicit-region
// convention; it is stripped before expansion.
const markupPrefix = "[JINJA]"

// Config configures an Expander.
type Config struct {
	// Repository supplies documents and include targets. Required.
	Repository *repo.Repository

	// Cache memoizes blob bytes and parsed documents. Nil disables
	// caching.
	Cache *cache.Cache

	// MaxIncludeDepth bounds include nesting. Zero selects
	// DefaultMaxIncludeDepth.
	MaxIncludeDepth int

	Logger *slog.Logger
}

// Expander runs the macro layer over documents of one repository.
type Expander struct {
	repository *repo.Repository
	cache      *cache.Cache
	maxDepth   int
	logger     *slog.Logger
}

// New creates an Expander.
func New(config Config) *Expander {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxDepth := config.MaxIncludeDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIncludeDepth
	}
	return &Expander{
		repository: config.Repository,
		cache:      config.Cache,
		maxDepth:   maxDepth,
		logger:     logger,
	}
}

// Repository returns the repository documents are read from.
func (e *Expander) Repository() *repo.Repository {
	return e.repository
}

// Blob returns the bytes of path at commit, through the byte cache.
func (e *Expander) Blob(ctx context.Context, commit repo.CommitRef, filePath string) ([]byte, error) {
	key := cache.Key{
		Kind:     cache.KindBytes,
		Identity: e.repository.Identity(),
		Path:     e.repository.FullPath(filePath),
		Commit:   string(commit),
	}
	return e.cache.Bytes(ctx, key, func(ctx context.Context) ([]byte, error) {
		blob, err := e.repository.Blob(ctx, commit, filePath)
		if err != nil {
			return nil, err
		}
		return blob.Data, nil
	})
}

// Expand runs the macro layer over YAML source text. The result is
// plain YAML.
func (e *Expander) Expand(ctx context.Context, commit repo.CommitRef, text string) (string, error) {
	return e.expand(ctx, commit, "", text)
}

func (e *Expander) expand(ctx context.Context, commit repo.CommitRef, name, text string) (string, error) {
	run := &execution{
		ctx:        ctx,
		expander:   e,
		commit:     commit,
		shieldYAML: true,
		data:       map[string]any{},
	}

	if locations := explicitRegion.FindAllStringSubmatchIndex(text, -1); len(locations) > 0 {
		var output strings.Builder
		last := 0
		for _, location := range locations {
			output.WriteString(text[last:location[0]])
			rendered, err := run.execute(name, unshielded(text[location[2]:location[3]]), 0)
			if err != nil {
				return "", &TemplateError{Path: name, Commit: commit, Err: err}
			}
			output.WriteString(rendered)
			last = location[1]
		}
		output.WriteString(text[last:])
		return output.String(), nil
	}

	rendered, err := run.execute(name, shieldYAML(text), 0)
	if err != nil {
		return "", &TemplateError{Path: name, Commit: commit, Err: err}
	}
	return rendered, nil
}

// ExpandMarkup runs the template layer over markup text with the given
// variables. Markup is not YAML, so nothing is shielded, and neither
// are included files. A leading "[JINJA]" marker is removed first.
func (e *Expander) ExpandMarkup(ctx context.Context, commit repo.CommitRef, text string, variables map[string]any) (string, error) {
	if trimmed := strings.TrimLeft(text, " \t\r\n\f\v"); strings.HasPrefix(trimmed, markupPrefix) {
		text = strings.TrimPrefix(trimmed, markupPrefix)
	}
	if variables == nil {
		variables = map[string]any{}
	}
	run := &execution{
		ctx:      ctx,
		expander: e,
		commit:   commit,
		data:     variables,
	}
	rendered, err := run.execute("", unshielded(text), 0)
	if err != nil {
		return "", &TemplateError{Commit: commit, Err: err}
	}
	return rendered, nil
}

// execution is the state shared by one top-level expansion and all of
// its includes.
type execution struct {
	ctx        context.Context
	expander   *Expander
	commit     repo.CommitRef
	shieldYAML bool
	data       map[string]any
}

func (x *execution) execute(name string, source *shieldedText, depth int) (string, error) {
	templateName := name
	if templateName == "" {
		templateName = "inline"
	}
	parsed, err := template.New(templateName).
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"include": func(target string) (string, error) {
				return x.include(target, depth+1)
			},
			shieldFunc: source.region,
		}).
		Parse(source.source)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	if err := parsed.Execute(&output, x.data); err != nil {
		return "", err
	}
	return output.String(), nil
}

// include expands the file at target for an include action.
func (x *execution) include(target string, depth int) (string, error) {
	if depth > x.expander.maxDepth {
		return "", fmt.Errorf("including %s: %w (%d)", target, ErrIncludeDepth, x.expander.maxDepth)
	}
	data, err := x.expander.Blob(x.ctx, x.commit, target)
	if errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("included template %q not found", target)
	}
	if err != nil {
		return "", fmt.Errorf("including %s: %w", target, err)
	}

	source := unshielded(string(data))
	if x.shieldYAML {
		switch strings.ToLower(path.Ext(target)) {
		case ".yml", ".yaml":
			source = shieldYAML(string(data))
		}
	}
	return x.execute(target, source, depth)
}
