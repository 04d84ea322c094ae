// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bureau-foundation/courseware/lib/access"
	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/datespec"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/macro"
	"github.com/bureau-foundation/courseware/lib/markup"
	"github.com/bureau-foundation/courseware/lib/pagetype"
	"github.com/bureau-foundation/courseware/lib/repo"
)

var tracer = otel.Tracer("courseware.content")

// flowsDirectory holds one <flow id>.yml per flow.
const flowsDirectory = "flows"

// Config configures a Loader.
type Config struct {
	// Cache memoizes blobs, documents and rendered markup. Nil
	// disables caching.
	Cache *cache.Cache

	// Markup renders chunk and description markup. Nil selects a
	// renderer with default settings sharing Cache.
	Markup *markup.Renderer

	// Dates resolves datespecs in rules. Required.
	Dates *datespec.Resolver

	// Handlers resolves flow page types. Nil selects a registry with
	// only the built-in types.
	Handlers *pagetype.Registry

	// MaxIncludeDepth bounds template includes. Zero selects
	// macro.DefaultMaxIncludeDepth.
	MaxIncludeDepth int

	Logger *slog.Logger
}

// Loader resolves course content.
type Loader struct {
	cache           *cache.Cache
	markup          *markup.Renderer
	dates           *datespec.Resolver
	handlers        *pagetype.Registry
	maxIncludeDepth int
	logger          *slog.Logger
}

// New creates a Loader.
func New(config Config) (*Loader, error) {
	if config.Dates == nil {
		return nil, errors.New("content: Dates is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	renderer := config.Markup
	if renderer == nil {
		renderer = markup.New(markup.Config{Cache: config.Cache, Logger: logger})
	}
	handlers := config.Handlers
	if handlers == nil {
		handlers = pagetype.NewRegistry(pagetype.Config{Logger: logger})
	}
	return &Loader{
		cache:           config.Cache,
		markup:          renderer,
		dates:           config.Dates,
		handlers:        handlers,
		maxIncludeDepth: config.MaxIncludeDepth,
		logger:          logger,
	}, nil
}

// Expander returns the macro expander for repository.
func (l *Loader) Expander(repository *repo.Repository) *macro.Expander {
	return macro.New(macro.Config{
		Repository:      repository,
		Cache:           l.cache,
		MaxIncludeDepth: l.maxIncludeDepth,
		Logger:          l.logger,
	})
}

// StaticPage loads the page at path, normalizing a single top-level
// "content" field into a one-chunk page.
func (l *Loader) StaticPage(ctx context.Context, repository *repo.Repository, commit repo.CommitRef, path string) (document.Value, error) {
	ctx, span := tracer.Start(ctx, "content.StaticPage",
		trace.WithAttributes(
			attribute.String("path", path),
			attribute.String("commit", string(commit)),
		),
	)
	defer span.End()

	page, err := l.Expander(repository).Load(ctx, commit, path)
	if err != nil {
		recordError(span, err)
		return document.Value{}, err
	}
	return document.NormalizePage(page), nil
}

// CourseDescription loads the course description page of c.
func (l *Loader) CourseDescription(ctx context.Context, c *course.Course, repository *repo.Repository, commit repo.CommitRef) (document.Value, error) {
	return l.StaticPage(ctx, repository, commit, c.DescriptionFile())
}

// Flow loads flows/<flowID>.yml, normalizes its legacy shapes, and sets
// "description_html" to the rendered description.
func (l *Loader) Flow(ctx context.Context, c *course.Course, repository *repo.Repository, commit repo.CommitRef, flowID string) (document.Value, error) {
	ctx, span := tracer.Start(ctx, "content.Flow",
		trace.WithAttributes(
			attribute.String("flow", flowID),
			attribute.String("commit", string(commit)),
		),
	)
	defer span.End()

	if flowID == "" || strings.ContainsAny(flowID, `/\`) || strings.HasPrefix(flowID, ".") {
		err := &repo.NotFoundError{Path: flowPath(flowID), Reason: "does not name a valid flow"}
		recordError(span, err)
		return document.Value{}, err
	}

	expander := l.Expander(repository)
	flow, err := expander.Load(ctx, commit, flowPath(flowID))
	if err != nil {
		recordError(span, err)
		return document.Value{}, err
	}
	flow = document.NormalizeFlow(flow)

	var descriptionHTML string
	if description, ok := flow.Field("description").AsString(); ok {
		descriptionHTML, err = l.markup.Render(ctx, c, expander, commit, description, nil)
		if err != nil {
			err = fmt.Errorf("%s: description: %w", flowPath(flowID), err)
			recordError(span, err)
			return document.Value{}, err
		}
	}
	return flow.With("description_html", descriptionHTML), nil
}

// FlowPage finds page pageID of group groupID in a loaded flow. A
// missing page is a repo.ErrNotFound.
func FlowPage(flowID string, flow document.Value, groupID, pageID string) (document.Value, error) {
	for _, group := range flow.Field("groups").List() {
		if group.Field("id").Text() != groupID {
			continue
		}
		for _, page := range group.Field("pages").List() {
			if page.Field("id").Text() == pageID {
				return page, nil
			}
		}
	}
	return document.Value{}, fmt.Errorf("page '%s/%s' in flow '%s': %w", groupID, pageID, flowID, repo.ErrNotFound)
}

// ListFlowIDs returns the sorted ids of the flows at commit. A
// repository without a flows directory has none.
func (l *Loader) ListFlowIDs(ctx context.Context, repository *repo.Repository, commit repo.CommitRef) ([]string, error) {
	tree, err := repository.Tree(ctx, commit, flowsDirectory)
	if errors.Is(err, repo.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, entry := range tree.Entries {
		if entry.Mode.IsTree() {
			continue
		}
		if id, ok := strings.CutSuffix(entry.Name, ".yml"); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// PageHandler instantiates the handler for page groupID/pageID of a
// loaded flow.
func (l *Loader) PageHandler(ctx context.Context, repository *repo.Repository, commit repo.CommitRef, flowID string, flow document.Value, groupID, pageID string) (pagetype.Handler, error) {
	ctx, span := tracer.Start(ctx, "content.PageHandler",
		trace.WithAttributes(
			attribute.String("flow", flowID),
			attribute.String("page", groupID+"/"+pageID),
		),
	)
	defer span.End()

	desc, err := FlowPage(flowID, flow, groupID, pageID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	location := fmt.Sprintf("%s: page %s/%s", flowPath(flowID), groupID, pageID)
	handler, err := l.handlers.Instantiate(ctx, l.Expander(repository), commit, location, desc)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("page_type", handler.TypeName()))
	return handler, nil
}

// PageView is a flow page ready for display.
type PageView struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// RenderPage renders a handler's title and body.
func (l *Loader) RenderPage(ctx context.Context, c *course.Course, repository *repo.Repository, commit repo.CommitRef, handler pagetype.Handler) (PageView, error) {
	title, err := handler.Title(ctx)
	if err != nil {
		return PageView{}, err
	}
	body, err := handler.Body(ctx)
	if err != nil {
		return PageView{}, err
	}
	html, err := l.markup.Render(ctx, c, l.Expander(repository), commit, body, nil)
	if err != nil {
		return PageView{}, err
	}
	return PageView{Type: handler.TypeName(), Title: title, HTML: html}, nil
}

// Accessible reports whether kind may read the repository file at
// path, according to the .attributes.yml of its directory.
func (l *Loader) Accessible(ctx context.Context, repository *repo.Repository, commit repo.CommitRef, kind access.Kind, path string) (bool, error) {
	return access.IsAccessibleAs(ctx, l.Expander(repository), commit, kind, path)
}

func flowPath(flowID string) string {
	return flowsDirectory + "/" + flowID + ".yml"
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
