// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"reflect"
	"testing"
)

func TestNormalizePage(t *testing.T) {
	page := NormalizePage(mustParse(t, "title: Home\ncontent: |\n  # Hello\n"))
	if page.Has("content") {
		t.Error("content should be removed")
	}
	chunks := page.Field("chunks")
	if chunks.Len() != 1 {
		t.Fatalf("chunks = %#v", chunks.Raw())
	}
	if id := chunks.Index(0).Field("id").Text(); id != MainID {
		t.Errorf("chunk id = %q, want %q", id, MainID)
	}
	if content := chunks.Index(0).Field("content").Text(); content != "# Hello\n" {
		t.Errorf("chunk content = %q", content)
	}
	if page.Field("title").Text() != "Home" {
		t.Error("other fields must be preserved")
	}
}

func TestNormalizePageUnchanged(t *testing.T) {
	source := mustParse(t, "chunks:\n  - id: a\n    content: x\n")
	if got := NormalizePage(source); !reflect.DeepEqual(got.Raw(), source.Raw()) {
		t.Errorf("NormalizePage changed a chunked page: %#v", got.Raw())
	}
}

func TestNormalizeFlowPages(t *testing.T) {
	flow := mustParse(t, `
title: Quiz
pages:
  - id: p1
    type: Page
  - id: p2
    type: Page
`)
	pages := flow.Field("pages").Raw()
	normalized := NormalizeFlow(flow)

	if normalized.Has("pages") {
		t.Error("pages should be removed")
	}
	groups := normalized.Field("groups")
	if groups.Len() != 1 {
		t.Fatalf("groups = %#v", groups.Raw())
	}
	if id := groups.Index(0).Field("id").Text(); id != MainID {
		t.Errorf("groups[0].id = %q", id)
	}
	if !reflect.DeepEqual(groups.Index(0).Field("pages").Raw(), pages) {
		t.Error("groups[0].pages differs from the original page list")
	}
}

func TestNormalizeFlowGradeIdentifier(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantID       any
		wantStrategy any
	}{
		{
			name: "hoisted from first non-null rule",
			source: `
rules:
  grading:
    - credit_percent: 100
      grade_identifier: null
    - grade_identifier: quiz1
      grade_aggregation_strategy: max_grade
    - grade_identifier: quiz2
      grade_aggregation_strategy: use_latest
`,
			wantID:       "quiz1",
			wantStrategy: "max_grade",
		},
		{
			name:   "no identifier anywhere",
			source: "rules:\n  grading:\n    - credit_percent: 100\n",
		},
		{
			name:   "no grading rules",
			source: "rules:\n  access: []\n",
		},
		{
			name:         "already at flow level",
			source:       "rules:\n  grade_identifier: top\n  grading:\n    - grade_identifier: inner\n",
			wantID:       "top",
			wantStrategy: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rules := NormalizeFlow(mustParse(t, test.source)).Field("rules")
			if !rules.Has("grade_identifier") {
				t.Fatal("grade_identifier missing after normalization")
			}
			if got := rules.Field("grade_identifier").Raw(); got != test.wantID {
				t.Errorf("grade_identifier = %#v, want %#v", got, test.wantID)
			}
			if got := rules.Field("grade_aggregation_strategy").Raw(); got != test.wantStrategy {
				t.Errorf("grade_aggregation_strategy = %#v, want %#v", got, test.wantStrategy)
			}
		})
	}
}

func TestNormalizeFlowAppliesBothRewrites(t *testing.T) {
	flow := NormalizeFlow(mustParse(t, `
pages:
  - id: p1
rules:
  grading:
    - grade_identifier: g
`))
	if !flow.Has("groups") {
		t.Error("pages not rewritten")
	}
	if flow.Field("rules").Field("grade_identifier").Text() != "g" {
		t.Error("grade identifier not hoisted")
	}
}

func TestNormalizeFlowWithoutRules(t *testing.T) {
	flow := NormalizeFlow(mustParse(t, "title: t\n"))
	if flow.Has("rules") || flow.Has("groups") {
		t.Errorf("unexpected rewrite: %#v", flow.Raw())
	}
}
