// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rules_test

import (
	"context"
	"testing"
	"time"

	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/datespec"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/event"
	"github.com/bureau-foundation/courseware/lib/rules"
)

var cs = &course.Course{ID: "cs101"}

func parse(t *testing.T, text string) document.Value {
	t.Helper()
	value, err := document.Parse([]byte(text))
	if err != nil {
		t.Fatalf("parsing %q: %v", text, err)
	}
	return value
}

func resolver(t *testing.T) *datespec.Resolver {
	t.Helper()
	events, err := event.NewMemoryStore(event.Event{
		CourseID: "cs101",
		Kind:     "exam",
		Time:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return datespec.NewResolver(datespec.Config{Events: events})
}

func TestEvaluate(t *testing.T) {
	dates := resolver(t)
	march := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	examStart := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		rules  string
		viewer course.Viewer
		want   rules.Outcome
	}{
		{
			name:   "role miss falls through to catch-all",
			rules:  "- if_has_role: [ta]\n  weight: 10\n- weight: 0\n  shown: false\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Outcome{Weight: 0, Shown: false},
		},
		{
			name:   "role hit",
			rules:  "- if_has_role: [ta]\n  weight: 10\n- weight: 0\n  shown: false\n",
			viewer: course.Viewer{Role: course.RoleTeachingAssistant, Now: march},
			want:   rules.Outcome{Weight: 10, Shown: true},
		},
		{
			name:   "no match gives default",
			rules:  "- if_has_role: [instructor]\n  weight: 5\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Default,
		},
		{
			name:   "first match wins",
			rules:  "- weight: 1\n- weight: 2\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Outcome{Weight: 1, Shown: true},
		},
		{
			name:   "empty role list matches nobody",
			rules:  "- if_has_role: []\n  weight: 3\n",
			viewer: course.Viewer{Role: course.RoleInstructor, Now: march},
			want:   rules.Default,
		},
		{
			name:   "before the after bound",
			rules:  "- if_after: exam\n  weight: 7\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Default,
		},
		{
			name:   "exactly at the after bound",
			rules:  "- if_after: exam\n  weight: 7\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: examStart},
			want:   rules.Outcome{Weight: 7, Shown: true},
		},
		{
			name:   "exactly at the before bound",
			rules:  "- if_before: exam\n  weight: 7\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: examStart},
			want:   rules.Outcome{Weight: 7, Shown: true},
		},
		{
			name:   "after the before bound",
			rules:  "- if_before: exam\n  weight: 7\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: examStart.Add(time.Second)},
			want:   rules.Default,
		},
		{
			name:   "date window with postprocessor",
			rules:  "- if_after: exam - 1 week\n  if_before: exam\n  weight: 4\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC)},
			want:   rules.Outcome{Weight: 4, Shown: true},
		},
		{
			name:   "facility required",
			rules:  "- if_in_facility: lab\n  weight: 2\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march, Facilities: []string{"library"}},
			want:   rules.Default,
		},
		{
			name:   "facility present",
			rules:  "- if_in_facility: lab\n  weight: 2\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march, Facilities: []string{"library", "lab"}},
			want:   rules.Outcome{Weight: 2, Shown: true},
		},
		{
			name:   "legacy roles",
			rules:  "- roles: [instructor]\n  weight: 9\n- weight: 1\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Outcome{Weight: 1, Shown: true},
		},
		{
			name:   "legacy end",
			rules:  "- end: 2026-03-01\n  weight: 9\n  shown: false\n- weight: 1\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Outcome{Weight: 1, Shown: true},
		},
		{
			name:   "modern and legacy predicates must both hold",
			rules:  "- if_has_role: [student]\n  start: exam\n  weight: 9\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Default,
		},
		{
			name:   "fractional weight",
			rules:  "- weight: 2.5\n",
			viewer: course.Viewer{Role: course.RoleStudent, Now: march},
			want:   rules.Outcome{Weight: 2.5, Shown: true},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parsed, err := rules.ParseRules(parse(t, test.rules), "page")
			if err != nil {
				t.Fatalf("ParseRules: %v", err)
			}
			got, err := rules.Evaluate(context.Background(), dates, cs, parsed, test.viewer)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != test.want {
				t.Errorf("Evaluate = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestParseRulesErrors(t *testing.T) {
	inputs := []string{
		"weight: 1\n",
		"- shown: false\n",
		"- weight: heavy\n",
		"- weight: 1\n  shown: maybe\n",
		"- weight: 1\n  if_has_role: ta\n",
		"- weight: 1\n  if_in_facility: {a: b}\n",
		"- just a string\n",
	}
	for _, input := range inputs {
		if _, err := rules.ParseRules(parse(t, input), "page"); err == nil {
			t.Errorf("ParseRules(%q) succeeded", input)
		}
	}
}

func TestEvaluateSurfacesInvalidDatespec(t *testing.T) {
	parsed, err := rules.ParseRules(parse(t, "- if_after: exam @ 30:00\n  weight: 1\n"), "page")
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	_, err = rules.Evaluate(context.Background(), resolver(t), cs, parsed, course.Viewer{Role: course.RoleStudent})
	if err == nil {
		t.Fatal("invalid datespec was not reported")
	}
}

func TestChunkOutcome(t *testing.T) {
	dates := resolver(t)
	viewer := course.Viewer{Role: course.RoleStudent, Now: time.Now()}

	got, err := rules.ChunkOutcome(context.Background(), dates, cs, parse(t, "id: main\ncontent: hi\n"), viewer, "page")
	if err != nil || got != rules.Default {
		t.Errorf("chunk without rules = %+v, %v", got, err)
	}

	got, err = rules.ChunkOutcome(context.Background(), dates, cs,
		parse(t, "id: main\nrules:\n  - weight: 3\n    shown: false\n"), viewer, "page")
	if err != nil || got != (rules.Outcome{Weight: 3, Shown: false}) {
		t.Errorf("chunk with rules = %+v, %v", got, err)
	}
}

func TestSortAndFilter(t *testing.T) {
	type chunk struct {
		id      string
		outcome rules.Outcome
	}
	chunks := []chunk{
		{"a", rules.Outcome{Weight: 1, Shown: true}},
		{"b", rules.Outcome{Weight: 5, Shown: true}},
		{"c", rules.Outcome{Weight: 1, Shown: true}},
		{"d", rules.Outcome{Weight: 9, Shown: false}},
		{"e", rules.Outcome{Weight: 5, Shown: true}},
	}
	got := rules.SortAndFilter(chunks, func(c chunk) rules.Outcome { return c.outcome })

	var ids string
	for _, c := range got {
		ids += c.id
	}
	if ids != "beac" {
		t.Errorf("order = %q, want %q", ids, "beac")
	}
	if chunks[0].id != "a" || chunks[3].id != "d" {
		t.Error("input slice was modified")
	}
}
