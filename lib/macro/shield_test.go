// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"strconv"
	"strings"
	"testing"
)

// unshield substitutes regions back without running the template
// engine, so the scanner can be checked in isolation.
func unshield(t *testing.T, text *shieldedText) string {
	t.Helper()
	result := text.source
	for i := len(text.regions) - 1; i >= 0; i-- {
		placeholder := "{{shielded " + strconv.Itoa(i) + "}}"
		if !strings.Contains(result, placeholder) {
			t.Fatalf("placeholder %q missing from %q", placeholder, result)
		}
		result = strings.Replace(result, placeholder, text.regions[i], 1)
	}
	return result
}

func TestShieldYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		source  string
		regions []string
	}{
		{
			name:   "plain lines pass through",
			input:  "title: {{ .x }}\nvalue: 3\n",
			source: "title: {{ .x }}\nvalue: 3\n",
		},
		{
			name:    "literal block is shielded",
			input:   "key: |\n  {{ literal }}\n",
			source:  "{{shielded 0}}",
			regions: []string{"key: |\n  {{ literal }}\n"},
		},
		{
			name:    "block ends at dedent",
			input:   "a: >\n  text\n\n  more\nb: {{ .y }}",
			source:  "{{shielded 0}}\nb: {{ .y }}",
			regions: []string{"a: >\n  text\n\n  more"},
		},
		{
			name:   "J flag opts in and is removed",
			input:  "a: |J\n  {{ .x }}\nb: 1",
			source: "a: |\n  {{ .x }}\nb: 1",
		},
		{
			name:   "J flag keeps chomping indicator",
			input:  "a: |J-\n  x",
			source: "a: |-\n  x",
		},
		{
			name:    "trailing comment is dropped from header",
			input:   "a: |2 # note\n   x",
			source:  "{{shielded 0}}",
			regions: []string{"a: |2\n   x"},
		},
		{
			name:    "nested block uses its own indentation",
			input:   "chunks:\n  - id: main\n    content: |\n      {{ x }}\n  - id: other",
			source:  "chunks:\n  - id: main\n{{shielded 0}}\n  - id: other",
			regions: []string{"    content: |\n      {{ x }}"},
		},
		{
			name:    "fold marker line is shielded",
			input:   "# {{{ section\na: 1\n# }}}",
			source:  "{{shielded 0}}\na: 1\n# }}}",
			regions: []string{"# {{{ section"},
		},
		{
			name:    "multiple regions are numbered in order",
			input:   "a: |\n  1\n    # {{{\nb: >\n  2",
			source:  "{{shielded 0}}\n{{shielded 1}}",
			regions: []string{"a: |\n  1\n    # {{{", "b: >\n  2"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := shieldYAML(test.input)
			if got.source != test.source {
				t.Errorf("source = %q, want %q", got.source, test.source)
			}
			if len(got.regions) != len(test.regions) {
				t.Fatalf("got %d regions %q, want %d", len(got.regions), got.regions, len(test.regions))
			}
			for i := range test.regions {
				if got.regions[i] != test.regions[i] {
					t.Errorf("region %d = %q, want %q", i, got.regions[i], test.regions[i])
				}
			}
		})
	}
}

func TestShieldYAMLPreservesUnflaggedText(t *testing.T) {
	inputs := []string{
		"key: |\n  {{ literal }}\n",
		"a: 1\nb: >-\n  {% raw %}\n\n  {{ x }}\n",
		"# {{{ fold\nlist:\n  - 1\n",
	}
	for _, input := range inputs {
		if got := unshield(t, shieldYAML(input)); got != input {
			t.Errorf("round trip of %q = %q", input, got)
		}
	}
}

func TestShieldedRegionOutOfRange(t *testing.T) {
	text := shieldYAML("a: |\n  x")
	if _, err := text.region(1); err == nil {
		t.Error("region(1) succeeded with one region")
	}
	if _, err := text.region(-1); err == nil {
		t.Error("region(-1) succeeded")
	}
}
