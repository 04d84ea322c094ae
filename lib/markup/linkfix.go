// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// TableClass is applied to every table.
const TableClass = "table table-condensed"

// placeholderCourse stands in for the course identifier when markup is
// rendered outside any course.
const placeholderCourse = "bogus-course-identifier"

// LinkFixer rewrites internal URLs (course:, flow:, staticpage:,
// media:, repo:, repocur:, calendar:) into URLs built by URLs.
type LinkFixer struct {
	Course *course.Course
	Commit repo.CommitRef
	URLs   URLBuilder
	Logger *slog.Logger
}

func (f *LinkFixer) courseIdentifier() string {
	if f.Course == nil {
		return placeholderCourse
	}
	return f.Course.Identifier
}

// RewriteURL returns the external form of an internal URL. ok is false
// for URLs in no recognized scheme, which are left alone. A URL that
// cannot be built becomes an inert data: URL describing the problem.
func (f *LinkFixer) RewriteURL(raw string) (rewritten string, ok bool) {
	identifier := f.courseIdentifier()
	commit := string(f.Commit)

	var (
		result string
		err    error
	)
	switch {
	case strings.HasPrefix(raw, "course:"):
		target := strings.TrimPrefix(raw, "course:")
		if target == "" {
			target = identifier
		}
		result, err = f.URLs.Reverse(ViewCoursePage, target)
	case strings.HasPrefix(raw, "flow:"):
		result, err = f.URLs.Reverse(ViewStartFlow, identifier, strings.TrimPrefix(raw, "flow:"))
	case strings.HasPrefix(raw, "staticpage:"):
		result, err = f.reverseWithFragment(strings.TrimPrefix(raw, "staticpage:"), ViewContentPage, identifier)
	case strings.HasPrefix(raw, "media:"):
		result, err = f.reverseWithFragment(strings.TrimPrefix(raw, "media:"), ViewMedia, identifier, commit)
	case strings.HasPrefix(raw, "repo:"):
		result, err = f.reverseWithFragment(strings.TrimPrefix(raw, "repo:"), ViewRepoFile, identifier, commit)
	case strings.HasPrefix(raw, "repocur:"):
		result, err = f.reverseWithFragment(strings.TrimPrefix(raw, "repocur:"), ViewCurrentRepoFile, identifier)
	case strings.TrimSpace(raw) == "calendar:":
		result, err = f.URLs.Reverse(ViewCalendar, identifier)
	default:
		return "", false
	}

	if err != nil {
		if f.Logger != nil {
			f.Logger.Warn("cannot build link", "url", raw, "error", err)
		}
		return inertURL("Invalid character in URL: " + raw), true
	}
	return result, true
}

// reverseWithFragment builds a URL whose last argument is a path that
// may end in "#fragment"; the fragment is carried over.
func (f *LinkFixer) reverseWithFragment(target string, view View, args ...string) (string, error) {
	var fragment string
	if index := strings.IndexByte(target, '#'); index >= 0 {
		target, fragment = target[:index], target[index:]
	}
	result, err := f.URLs.Reverse(view, append(args, target)...)
	if err != nil {
		return "", err
	}
	return result + fragment, nil
}

func inertURL(message string) string {
	return "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(message))
}

// RewriteAttributes returns the attributes of a tag after link
// rewriting: href on a and link, src on img, data on object, and the
// fixed class on table. The input slice is not modified.
func (f *LinkFixer) RewriteAttributes(tag string, attrs []html.Attribute) []html.Attribute {
	result := append([]html.Attribute(nil), attrs...)

	if tag == "table" {
		result = setAttribute(result, "class", TableClass)
	}

	var urlAttribute string
	switch tag {
	case "a", "link":
		urlAttribute = "href"
	case "img":
		urlAttribute = "src"
	case "object":
		urlAttribute = "data"
	default:
		return result
	}
	for i, attr := range result {
		if attr.Namespace != "" || attr.Key != urlAttribute {
			continue
		}
		if rewritten, ok := f.RewriteURL(attr.Val); ok {
			result[i].Val = rewritten
		}
		break
	}
	return result
}

func setAttribute(attrs []html.Attribute, key, value string) []html.Attribute {
	for i, attr := range attrs {
		if attr.Namespace == "" && attr.Key == key {
			attrs[i].Val = value
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: key, Val: value})
}

func attributeValue(attrs []html.Attribute, key string) (string, bool) {
	for _, attr := range attrs {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
