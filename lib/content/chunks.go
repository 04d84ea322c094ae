// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/markup"
	"github.com/bureau-foundation/courseware/lib/repo"
	"github.com/bureau-foundation/courseware/lib/rules"
)

// renderConcurrency bounds concurrent chunk rendering for one page.
const renderConcurrency = 4

// Chunk is a page chunk evaluated for one viewer.
type Chunk struct {
	ID     string  `json:"id"`
	Title  string  `json:"title,omitempty"`
	Weight float64 `json:"weight"`
	Shown  bool    `json:"shown"`
	HTML   string  `json:"html"`
}

// ProcessedChunks evaluates the rules of every chunk of page against
// viewer and returns the shown chunks, heaviest first, with their
// markup rendered. Chunks of equal weight keep their page order. A
// chunk without a title takes the first heading of its content.
func (l *Loader) ProcessedChunks(ctx context.Context, c *course.Course, repository *repo.Repository, commit repo.CommitRef, page document.Value, viewer course.Viewer) ([]Chunk, error) {
	ctx, span := tracer.Start(ctx, "content.ProcessedChunks",
		trace.WithAttributes(
			attribute.String("role", string(viewer.Role)),
			attribute.String("commit", string(commit)),
		),
	)
	defer span.End()

	type evaluated struct {
		chunk   Chunk
		content string
		outcome rules.Outcome
	}
	var all []evaluated
	for i, desc := range page.Field("chunks").List() {
		id := desc.Field("id").Text()
		location := fmt.Sprintf("chunk %d (%s)", i+1, id)
		outcome, err := rules.ChunkOutcome(ctx, l.dates, c, desc, viewer, location)
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		content := desc.Field("content").Text()
		title, ok := desc.Field("title").AsString()
		if !ok {
			title, _ = markup.ExtractTitle(content)
		}
		all = append(all, evaluated{
			chunk: Chunk{
				ID:     id,
				Title:  title,
				Weight: outcome.Weight,
				Shown:  outcome.Shown,
			},
			content: content,
			outcome: outcome,
		})
	}

	shown := rules.SortAndFilter(all, func(e evaluated) rules.Outcome { return e.outcome })
	span.SetAttributes(
		attribute.Int("chunks", len(all)),
		attribute.Int("shown", len(shown)),
	)

	expander := l.Expander(repository)
	result := make([]Chunk, len(shown))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(renderConcurrency)
	for i, e := range shown {
		group.Go(func() error {
			html, err := l.markup.Render(groupCtx, c, expander, commit, e.content, nil)
			if err != nil {
				return fmt.Errorf("chunk %q: %w", e.chunk.ID, err)
			}
			result[i] = e.chunk
			result[i].HTML = html
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		recordError(span, err)
		return nil, err
	}
	return result, nil
}
