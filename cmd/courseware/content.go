// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/content"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// pageOutput is the JSON result of "courseware page".
type pageOutput struct {
	Path   string          `json:"path"`
	Commit repo.CommitRef  `json:"commit"`
	Chunks []content.Chunk `json:"chunks"`
}

func pageCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "page",
		Summary: "Render a static page's visible chunks",
		Description: `Load a static page (default: the course description page) and
render the chunks visible to the viewer, ordered by weight.`,
		Usage: "courseware page [flags] [path]",
		Examples: []cli.Example{
			{
				Description: "Course page as a TA on the first day of class",
				Command:     "courseware page --course cs101 --role ta --now 2026-01-12",
			},
			{
				Command: "courseware page --course cs101 --facility lab syllabus.yml",
			},
		},
		Flags: func() *pflag.FlagSet { return newFlagSet("page", &params) },
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("expected at most one page path, got %d arguments", len(args))
			}
			return withCourse(&params, func(ctx context.Context, s *session) error {
				path := s.course.DescriptionFile()
				if len(args) == 1 {
					path = args[0]
				}
				output, err := renderPage(ctx, s, path)
				if err != nil {
					return err
				}
				return cli.WriteJSON(output)
			})
		},
	}
}

func renderPage(ctx context.Context, s *session, path string) (pageOutput, error) {
	page, err := s.loader.StaticPage(ctx, s.repository, s.commit, path)
	if err != nil {
		return pageOutput{}, err
	}
	chunks, err := s.loader.ProcessedChunks(ctx, s.course, s.repository, s.commit, page, s.viewer)
	if err != nil {
		return pageOutput{}, err
	}
	return pageOutput{Path: path, Commit: s.commit, Chunks: chunks}, nil
}

func flowsCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "flows",
		Summary: "List the course's flow identifiers",
		Flags:   func() *pflag.FlagSet { return newFlagSet("flows", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return errUsage("courseware flows [flags]")
			}
			return withCourse(&params, func(ctx context.Context, s *session) error {
				ids, err := s.loader.ListFlowIDs(ctx, s.repository, s.commit)
				if err != nil {
					return err
				}
				return cli.WriteJSON(ids)
			})
		},
	}
}

// flowOutput is the JSON result of "courseware flow <id>".
type flowOutput struct {
	ID     string         `json:"id"`
	Commit repo.CommitRef `json:"commit"`
	Flow   document.Value `json:"flow"`
}

// flowPageOutput is the JSON result of "courseware flow <id> <group>/<page>".
type flowPageOutput struct {
	FlowID  string         `json:"flow_id"`
	GroupID string         `json:"group_id"`
	PageID  string         `json:"page_id"`
	Commit  repo.CommitRef `json:"commit"`
	content.PageView
}

func flowCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "flow",
		Summary: "Show a flow, or render one of its pages",
		Description: `Without a page argument, print the normalized flow description with
its rendered description_html. With <group>/<page>, instantiate the
page's type and render it.`,
		Usage: "courseware flow [flags] <id> [<group>/<page>]",
		Examples: []cli.Example{
			{Command: "courseware flow --course cs101 quiz"},
			{
				Description: "Render a page of a flow without groups",
				Command:     "courseware flow --course cs101 quiz main/intro",
			},
		},
		Flags: func() *pflag.FlagSet { return newFlagSet("flow", &params) },
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errUsage("courseware flow [flags] <id> [<group>/<page>]")
			}
			return withCourse(&params, func(ctx context.Context, s *session) error {
				if len(args) == 1 {
					output, err := showFlow(ctx, s, args[0])
					if err != nil {
						return err
					}
					return cli.WriteJSON(output)
				}
				groupID, pageID, ok := strings.Cut(args[1], "/")
				if !ok {
					return fmt.Errorf("page %q is not of the form <group>/<page>", args[1])
				}
				output, err := renderFlowPage(ctx, s, args[0], groupID, pageID)
				if err != nil {
					return err
				}
				return cli.WriteJSON(output)
			})
		},
	}
}

func showFlow(ctx context.Context, s *session, flowID string) (flowOutput, error) {
	flow, err := s.loader.Flow(ctx, s.course, s.repository, s.commit, flowID)
	if err != nil {
		return flowOutput{}, err
	}
	return flowOutput{ID: flowID, Commit: s.commit, Flow: flow}, nil
}

func renderFlowPage(ctx context.Context, s *session, flowID, groupID, pageID string) (flowPageOutput, error) {
	flow, err := s.loader.Flow(ctx, s.course, s.repository, s.commit, flowID)
	if err != nil {
		return flowPageOutput{}, err
	}
	handler, err := s.loader.PageHandler(ctx, s.repository, s.commit, flowID, flow, groupID, pageID)
	if err != nil {
		return flowPageOutput{}, err
	}
	view, err := s.loader.RenderPage(ctx, s.course, s.repository, s.commit, handler)
	if err != nil {
		return flowPageOutput{}, err
	}
	return flowPageOutput{
		FlowID:   flowID,
		GroupID:  groupID,
		PageID:   pageID,
		Commit:   s.commit,
		PageView: view,
	}, nil
}

// withCourse opens a session and the course repository, runs fn, and
// closes the session.
func withCourse(params *courseParams, fn func(ctx context.Context, s *session) error) error {
	return withSession(params, func(ctx context.Context, s *session) error {
		if err := s.openCourse(ctx, params.Preview); err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// withSession opens a session, runs fn, and closes the session.
func withSession(params *courseParams, fn func(ctx context.Context, s *session) error) (err error) {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openSession(params)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, s)
}
