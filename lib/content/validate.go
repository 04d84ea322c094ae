// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/repo"
	"github.com/bureau-foundation/courseware/lib/rules"
	"github.com/bureau-foundation/courseware/lib/validation"
)

// Validate checks the course description and every flow at commit.
// Soft problems, such as a rule date that names an event the course
// does not have, are returned as warnings. Hard problems are joined
// into the error; the walk continues past them so one run reports as
// much as possible.
func (l *Loader) Validate(ctx context.Context, c *course.Course, repository *repo.Repository, commit repo.CommitRef) ([]validation.Warning, error) {
	ctx, span := tracer.Start(ctx, "content.Validate")
	defer span.End()

	vctx := validation.New()
	var problems []error

	if page, err := l.CourseDescription(ctx, c, repository, commit); err != nil {
		problems = append(problems, err)
	} else {
		problems = append(problems, l.validatePage(ctx, c, vctx, c.DescriptionFile(), page)...)
	}

	flowIDs, err := l.ListFlowIDs(ctx, repository, commit)
	if err != nil {
		problems = append(problems, err)
	}
	for _, flowID := range flowIDs {
		flow, err := l.Flow(ctx, c, repository, commit, flowID)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		problems = append(problems, l.validateFlow(ctx, repository, commit, flowID, flow)...)
	}

	err = errors.Join(problems...)
	if err != nil {
		recordError(span, err)
	}
	return vctx.Warnings(), err
}

func (l *Loader) validatePage(ctx context.Context, c *course.Course, vctx *validation.Context, path string, page document.Value) []error {
	var problems []error
	for i, chunk := range page.Field("chunks").List() {
		location := fmt.Sprintf("%s, chunk %d", path, i+1)
		if err := validation.Identifier(location, chunk.Field("id").Text()); err != nil {
			problems = append(problems, err)
		}
		value, ok := chunk.Get("rules")
		if !ok {
			continue
		}
		parsed, err := rules.ParseRules(value, location)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		for j, rule := range parsed {
			ruleLocation := fmt.Sprintf("%s, rule %d", location, j+1)
			for _, spec := range []any{rule.IfAfter, rule.IfBefore, rule.Start, rule.End} {
				if spec == nil {
					continue
				}
				if _, err := l.dates.Parse(ctx, c, spec, vctx, ruleLocation); err != nil {
					problems = append(problems, fmt.Errorf("%s: %w", ruleLocation, err))
				}
			}
		}
	}
	return problems
}

func (l *Loader) validateFlow(ctx context.Context, repository *repo.Repository, commit repo.CommitRef, flowID string, flow document.Value) []error {
	var problems []error
	groups := flow.Field("groups")
	if !groups.IsList() {
		return []error{fmt.Errorf("%s: flow has no groups", flowPath(flowID))}
	}
	for _, group := range groups.List() {
		groupID := group.Field("id").Text()
		location := fmt.Sprintf("%s, group %q", flowPath(flowID), groupID)
		if err := validation.Identifier(location, groupID); err != nil {
			problems = append(problems, err)
		}
		for _, page := range group.Field("pages").List() {
			pageID := page.Field("id").Text()
			if err := validation.Identifier(fmt.Sprintf("%s, page %q", location, pageID), pageID); err != nil {
				problems = append(problems, err)
				continue
			}
			if _, err := l.PageHandler(ctx, repository, commit, flowID, flow, groupID, pageID); err != nil {
				problems = append(problems, err)
			}
		}
	}
	return problems
}
