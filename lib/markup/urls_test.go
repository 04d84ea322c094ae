// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"errors"
	"testing"
)

func TestPathURLsReverse(t *testing.T) {
	urls := PathURLs{Prefix: "https://learn.example.edu/"}

	tests := []struct {
		name    string
		view    View
		args    []string
		want    string
		wantErr bool
	}{
		{"course page", ViewCoursePage, []string{"cs101"}, "https://learn.example.edu/course/cs101/", false},
		{"start flow", ViewStartFlow, []string{"cs101", "quiz_1"}, "https://learn.example.edu/course/cs101/flow/quiz_1/start/", false},
		{"content page", ViewContentPage, []string{"cs101", "notes/week1"}, "https://learn.example.edu/course/cs101/page/notes/week1/", false},
		{"media path is escaped", ViewMedia, []string{"cs101", "abc123", "img/a b.png"}, "https://learn.example.edu/course/cs101/media/abc123/img/a%20b.png", false},
		{"repo file", ViewRepoFile, []string{"cs101", "abc123", "data/x.csv"}, "https://learn.example.edu/course/cs101/file-version/abc123/data/x.csv", false},
		{"current repo file", ViewCurrentRepoFile, []string{"cs101", "data/x.csv"}, "https://learn.example.edu/course/cs101/f/data/x.csv", false},
		{"calendar", ViewCalendar, []string{"cs101"}, "https://learn.example.edu/course/cs101/calendar/", false},
		{"invalid course identifier", ViewCoursePage, []string{"cs 101"}, "", true},
		{"invalid flow id", ViewStartFlow, []string{"cs101", "quiz?"}, "", true},
		{"commit must be hex", ViewMedia, []string{"cs101", "main", "x.png"}, "", true},
		{"empty path", ViewCurrentRepoFile, []string{"cs101", ""}, "", true},
		{"wrong argument count", ViewCalendar, nil, "", true},
		{"unknown view", View("gradebook"), []string{"cs101"}, "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := urls.Reverse(test.view, test.args...)
			if test.wantErr {
				if !errors.Is(err, ErrNoReverse) {
					t.Fatalf("Reverse() error = %v, want ErrNoReverse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Reverse() error: %v", err)
			}
			if got != test.want {
				t.Errorf("Reverse() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestPathURLsCacheTag(t *testing.T) {
	if (PathURLs{Prefix: "a"}).CacheTag() == (PathURLs{Prefix: "b"}).CacheTag() {
		t.Error("different prefixes share a cache tag")
	}
}
