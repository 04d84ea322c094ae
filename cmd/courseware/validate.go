// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/validation"
)

func validateCommand() *cli.Command {
	var params courseParams
	var strict bool
	return &cli.Command{
		Name:    "validate",
		Summary: "Check a course's content for errors and warnings",
		Description: `Load the course description page and every flow, checking chunk and
page identifiers, visibility rules, date specifications and page
types. Errors fail the command; warnings are printed as JSON.`,
		Flags: func() *pflag.FlagSet {
			flagSet := newFlagSet("validate", &params)
			flagSet.BoolVar(&strict, "strict", false, "exit with status 1 when there are warnings")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return errUsage("courseware validate [flags]")
			}
			return withCourse(&params, func(ctx context.Context, s *session) error {
				warnings, err := s.loader.Validate(ctx, s.course, s.repository, s.commit)
				if err != nil {
					return err
				}
				if warnings == nil {
					warnings = []validation.Warning{}
				}
				if err := cli.WriteJSON(warnings); err != nil {
					return err
				}
				if strict && len(warnings) > 0 {
					return &cli.ExitError{Code: 1}
				}
				return nil
			})
		},
	}
}
