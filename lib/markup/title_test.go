// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
		wantOK bool
	}{
		{"first line", "# Welcome\n\ntext", "Welcome", true},
		{"deeper heading", "intro\n\n### Week 1: Sets\n", "Week 1: Sets", true},
		{"no space after hashes", "#Overview", "Overview", true},
		{"punctuation is not a title", "# --- \n## Real\n", "Real", true},
		{"windows line endings", "text\r\n# Title\r\n", "Title", true},
		{"no heading", "just text\n", "", false},
		{"heading after ten lines", "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n# Late\n", "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := ExtractTitle(test.markup)
			if got != test.want || ok != test.wantOK {
				t.Errorf("ExtractTitle() = (%q, %v), want (%q, %v)", got, ok, test.want, test.wantOK)
			}
		})
	}
}
