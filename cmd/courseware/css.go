// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/markup"
)

func cssCommand() *cli.Command {
	var style string
	return &cli.Command{
		Name:    "css",
		Summary: "Print the stylesheet for highlighted code blocks",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("css", pflag.ContinueOnError)
			flagSet.StringVar(&style, "style", markup.DefaultCodeStyle, "chroma style name")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return errUsage("courseware css [--style name]")
			}
			return markup.WriteCodeCSS(os.Stdout, style)
		},
	}
}
