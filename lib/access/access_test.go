// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/courseware/lib/access"
	"github.com/bureau-foundation/courseware/lib/macro"
	"github.com/bureau-foundation/courseware/lib/testutil"
)

func TestIsAccessibleAs(t *testing.T) {
	repository, commit := testutil.Repository(t, map[string]string{
		"media/.attributes.yml": `
public: ["syllabus.pdf"]
student: ["*.ipynb", "hw?.pdf"]
ta: ["solutions-*.pdf"]
instructor: ["grades.csv"]
in_exam: ["formulas.pdf"]
unenrolled: ["[!_]*.png"]
`,
		"media/syllabus.pdf":        "",
		"private/notes.pdf":         "",
		"broken/.attributes.yml":    "student: {{ .undefined }}\n",
		"templated/.attributes.yml": "student:\n  - \"{{ printf \"%s\" \"a\" }}-*.txt\"\n",
	})
	loader := macro.New(macro.Config{Repository: repository})

	tests := []struct {
		kind access.Kind
		path string
		want bool
	}{
		{access.Student, "media/solutions-1.pdf", false},
		{access.TA, "media/solutions-1.pdf", true},
		{access.Student, "media/syllabus.pdf", true},
		{access.Unenrolled, "media/syllabus.pdf", true},
		{access.Public, "media/syllabus.pdf", true},
		{access.Unenrolled, "media/hw1.pdf", false},
		{access.Student, "media/hw1.pdf", true},
		{access.Student, "media/hw10.pdf", false},
		{access.Instructor, "media/hw1.pdf", true},
		{access.Instructor, "media/grades.csv", true},
		{access.TA, "media/grades.csv", false},
		{access.Instructor, "media/formulas.pdf", false},
		{access.InExam, "media/formulas.pdf", true},
		{access.InExam, "media/syllabus.pdf", false},
		{access.Public, "media/diagram.png", true},
		{access.Public, "media/_draft.png", false},
		{access.Instructor, "private/notes.pdf", false},
		{access.Student, "templated/a-notes.txt", true},
	}
	for _, test := range tests {
		t.Run(string(test.kind)+" "+test.path, func(t *testing.T) {
			got, err := access.IsAccessibleAs(context.Background(), loader, commit, test.kind, test.path)
			if err != nil {
				t.Fatalf("IsAccessibleAs: %v", err)
			}
			if got != test.want {
				t.Errorf("IsAccessibleAs(%s, %s) = %v, want %v", test.kind, test.path, got, test.want)
			}
		})
	}

	var templateError *macro.TemplateError
	_, err := access.IsAccessibleAs(context.Background(), loader, commit, access.Student, "broken/x.pdf")
	if !errors.As(err, &templateError) {
		t.Errorf("error = %v, want *macro.TemplateError", err)
	}
	if _, err := access.IsAccessibleAs(context.Background(), loader, commit, access.Kind("admin"), "media/syllabus.pdf"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"public", "unenrolled", "student", "ta", "instructor", "in_exam"} {
		if _, err := access.ParseKind(name); err != nil {
			t.Errorf("ParseKind(%q): %v", name, err)
		}
	}
	if _, err := access.ParseKind("observer"); err == nil {
		t.Error("ParseKind(observer) succeeded")
	}
	if grants := access.InExam.Grants(); len(grants) != 1 || grants[0] != access.InExam {
		t.Errorf("in_exam grants = %v", grants)
	}
}
