// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/access"
)

// accessOutput is one result of "courseware access".
type accessOutput struct {
	Path       string      `json:"path"`
	Kind       access.Kind `json:"kind"`
	Accessible bool        `json:"accessible"`
}

func accessCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "access",
		Summary: "Check whether files may be served to an access kind",
		Description: `Check each path against the .attributes.yml file of its directory.
Exits with status 1 when any path is not accessible.

Access kinds: public, unenrolled, student, ta, instructor, in_exam.`,
		Usage: "courseware access [flags] <kind> <path>...",
		Examples: []cli.Example{
			{Command: "courseware access --course cs101 student media/slides.pdf"},
		},
		Flags: func() *pflag.FlagSet { return newFlagSet("access", &params) },
		Run: func(args []string) error {
			if len(args) < 2 {
				return errUsage("courseware access [flags] <kind> <path>...")
			}
			kind, err := access.ParseKind(args[0])
			if err != nil {
				return err
			}
			return withCourse(&params, func(ctx context.Context, s *session) error {
				results, err := checkAccess(ctx, s, kind, args[1:])
				if err != nil {
					return err
				}
				if err := cli.WriteJSON(results); err != nil {
					return err
				}
				for _, result := range results {
					if !result.Accessible {
						return &cli.ExitError{Code: 1}
					}
				}
				return nil
			})
		},
	}
}

func checkAccess(ctx context.Context, s *session, kind access.Kind, paths []string) ([]accessOutput, error) {
	results := make([]accessOutput, 0, len(paths))
	for _, path := range paths {
		accessible, err := s.loader.Accessible(ctx, s.repository, s.commit, kind, path)
		if err != nil {
			return nil, err
		}
		results = append(results, accessOutput{Path: path, Kind: kind, Accessible: accessible})
	}
	return results, nil
}
