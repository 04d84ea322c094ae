// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/validation"
)

// dateOutput is one result of "courseware date".
type dateOutput struct {
	Spec     string               `json:"spec"`
	Time     time.Time            `json:"time"`
	Warnings []validation.Warning `json:"warnings,omitempty"`
}

func dateCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "date",
		Summary: "Evaluate date specifications against the course's events",
		Description: `Evaluate each argument as a date specification. Event references are
looked up in the event store for --course; an unknown event evaluates
to now and is reported as a warning.`,
		Usage: "courseware date [flags] <spec>...",
		Examples: []cli.Example{
			{Command: `courseware date --course cs101 "homework 3 + 2 days @ 23:59"`},
			{Command: `courseware date --course cs101 "end:lab 1" 2026-03-01`},
		},
		Flags: func() *pflag.FlagSet { return newFlagSet("date", &params) },
		Run: func(args []string) error {
			if len(args) == 0 {
				return errUsage("courseware date [flags] <spec>...")
			}
			return withSession(&params, func(ctx context.Context, s *session) error {
				results, err := evaluateDates(ctx, s, args)
				if err != nil {
					return err
				}
				return cli.WriteJSON(results)
			})
		},
	}
}

func evaluateDates(ctx context.Context, s *session, specs []string) ([]dateOutput, error) {
	results := make([]dateOutput, 0, len(specs))
	for _, spec := range specs {
		vctx := validation.New()
		t, err := s.dates.Parse(ctx, s.course, spec, vctx, "")
		if err != nil {
			return nil, err
		}
		results = append(results, dateOutput{
			Spec:     spec,
			Time:     t.In(s.location),
			Warnings: vctx.Warnings(),
		})
	}
	return results, nil
}
