// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Handle --version before dispatch to match other binaries.
	if len(args) > 0 && args[0] == "--version" {
		version.Print("courseware")
		return nil
	}
	return rootCommand().Execute(args)
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "courseware",
		Summary: "Resolve course content from git",
		Description: `Courseware resolves course content from a course's git repository:
pages and their visibility-filtered chunks, flows, date specifications
and per-role file access. Output is JSON.`,
		Subcommands: []*cli.Command{
			pageCommand(),
			flowsCommand(),
			flowCommand(),
			dateCommand(),
			accessCommand(),
			validateCommand(),
			eventsCommand(),
			cssCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}

func errUsage(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
