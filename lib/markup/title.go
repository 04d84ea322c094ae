// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"regexp"
	"strings"
)

const titleSearchLines = 10

var headingPattern = regexp.MustCompile(`^#+\s*([\p{L}\p{N}_].*)`)

// ExtractTitle returns the text of the first Markdown heading within
// the first ten lines of markup.
func ExtractTitle(markup string) (string, bool) {
	lines := strings.SplitN(markup, "\n", titleSearchLines+1)
	if len(lines) > titleSearchLines {
		lines = lines[:titleSearchLines]
	}
	for _, line := range lines {
		if match := headingPattern.FindStringSubmatch(strings.TrimRight(line, "\r")); match != nil {
			return strings.TrimSpace(match[1]), true
		}
	}
	return "", false
}
