// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// blockScalarHeader matches the tail of a line that opens a YAML
	// block scalar: the indicator, an optional J (templating allowed),
	// optional chomping/indentation indicators, and an optional
	// comment.
	blockScalarHeader = regexp.MustCompile(`(:\s*[|>])(J?)((?:[0-9][-+]?|[-+][0-9]?)?)(?:\s*#.*)?$`)

	// foldMarker matches an editor fold-open comment line.
	foldMarker = regexp.MustCompile(`^\s*#\s*\{\{\{`)

	leadingSpaces = regexp.MustCompile(`^( *)`)
)

// shieldFunc is the template function that emits shielded regions.
const shieldFunc = "shielded"

// shieldedText is template source in which some regions have been
// replaced by calls to shieldFunc.
type shieldedText struct {
	source  string
	regions []string
}

// region returns the text of shielded region i.
func (s *shieldedText) region(i int) (string, error) {
	if i < 0 || i >= len(s.regions) {
		return "", fmt.Errorf("no shielded region %d", i)
	}
	return s.regions[i], nil
}

func (s *shieldedText) shield(lines []string) string {
	index := len(s.regions)
	s.regions = append(s.regions, strings.Join(lines, "\n"))
	return fmt.Sprintf("{{%s %d}}", shieldFunc, index)
}

// shieldYAML scans text line by line and shields block scalars that
// did not opt in to templating, plus fold-marker lines. The J flag is
// removed from every block-scalar header.
func shieldYAML(text string) *shieldedText {
	result := &shieldedText{}
	lines := strings.Split(text, "\n")
	output := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		line := lines[i]
		match := blockScalarHeader.FindStringSubmatch(line)

		switch {
		case match != nil:
			allowTemplates := match[2] != ""
			header := blockScalarHeader.ReplaceAllString(line, "${1}${3}")
			headerIndent := len(leadingSpaces.FindString(header))

			block := []string{header}
			i++
			for i < len(lines) {
				body := lines[i]
				if strings.TrimRight(body, " \t\r\n\f\v") != "" &&
					len(leadingSpaces.FindString(body)) <= headerIndent {
					break
				}
				block = append(block, body)
				i++
			}

			if allowTemplates {
				output = append(output, block...)
			} else {
				output = append(output, result.shield(block))
			}

		case foldMarker.MatchString(line):
			output = append(output, result.shield([]string{line}))
			i++

		default:
			output = append(output, line)
			i++
		}
	}

	result.source = strings.Join(output, "\n")
	return result
}

// unshielded wraps text that needs no shielding.
func unshielded(text string) *shieldedText {
	return &shieldedText{source: text}
}
