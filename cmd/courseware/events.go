// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/event"
)

// eventOutput is the JSON form of an event.
type eventOutput struct {
	Kind    string     `json:"kind"`
	Ordinal *int       `json:"ordinal,omitempty"`
	Name    string     `json:"name"`
	Time    time.Time  `json:"time"`
	EndTime *time.Time `json:"end_time,omitempty"`
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:    "events",
		Summary: "Manage the course event store",
		Subcommands: []*cli.Command{
			eventsImportCommand(),
			eventsListCommand(),
		},
	}
}

func eventsImportCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "import",
		Summary: "Import events from a YAML file",
		Description: `Read a YAML list of events and store them for --course, replacing
events with the same kind and ordinal.

  - kind: homework
    ordinal: 1
    time: 2026-03-01T09:00:00Z
    end_time: 2026-03-08T09:00:00Z`,
		Usage: "courseware events import [flags] <file>",
		Flags: func() *pflag.FlagSet { return newFlagSet("import", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage("courseware events import [flags] <file>")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSession(&params, func(ctx context.Context, s *session) error {
				count, err := importEvents(ctx, s, data)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				s.logger.Info("imported events", "file", args[0], "count", count)
				return cli.WriteJSON(map[string]int{"imported": count})
			})
		},
	}
}

func importEvents(ctx context.Context, s *session, data []byte) (int, error) {
	if err := s.requireCourse(); err != nil {
		return 0, err
	}
	events, err := event.ParseFile(s.course.ID, data)
	if err != nil {
		return 0, err
	}
	if err := s.events.Put(ctx, events...); err != nil {
		return 0, err
	}
	return len(events), nil
}

func eventsListCommand() *cli.Command {
	var params courseParams
	return &cli.Command{
		Name:    "list",
		Summary: "List the course's events",
		Flags:   func() *pflag.FlagSet { return newFlagSet("list", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return errUsage("courseware events list [flags]")
			}
			return withSession(&params, func(ctx context.Context, s *session) error {
				output, err := listEvents(ctx, s)
				if err != nil {
					return err
				}
				return cli.WriteJSON(output)
			})
		},
	}
}

func listEvents(ctx context.Context, s *session) ([]eventOutput, error) {
	if err := s.requireCourse(); err != nil {
		return nil, err
	}
	events, err := s.events.Events(ctx, s.course.ID)
	if err != nil {
		return nil, err
	}
	output := make([]eventOutput, 0, len(events))
	for _, e := range events {
		entry := eventOutput{
			Kind:    e.Kind,
			Ordinal: e.Ordinal,
			Name:    e.Name(),
			Time:    e.Time.In(s.location),
		}
		if e.EndTime != nil {
			end := e.EndTime.In(s.location)
			entry.EndTime = &end
		}
		output = append(output, entry)
	}
	return output, nil
}
