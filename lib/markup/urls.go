// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoReverse is returned by a URLBuilder when its arguments cannot
// form a URL for the view (typically an invalid character in an
// identifier).
var ErrNoReverse = errors.New("no reverse match")

// View names a page of the web application that content can link to.
type View string

const (
	ViewCoursePage      View = "course_page"       // course identifier
	ViewStartFlow       View = "start_flow"        // course identifier, flow id
	ViewContentPage     View = "content_page"      // course identifier, page path
	ViewMedia           View = "media"             // course identifier, commit, media path
	ViewRepoFile        View = "repo_file"         // course identifier, commit, file path
	ViewCurrentRepoFile View = "current_repo_file" // course identifier, file path
	ViewCalendar        View = "calendar"          // course identifier
)

// URLBuilder constructs external URLs for views.
type URLBuilder interface {
	Reverse(view View, args ...string) (string, error)
}

var (
	courseIdentifierPattern = regexp.MustCompile(`^[-a-zA-Z0-9]+$`)
	flowIDPattern           = regexp.MustCompile(`^[-_a-zA-Z0-9]+$`)
	pagePathPattern         = regexp.MustCompile(`^[-\w/]+$`)
	commitPattern           = regexp.MustCompile(`^[a-fA-F0-9]+$`)
)

type pathView struct {
	format   string
	patterns []*regexp.Regexp
}

// A nil pattern accepts any non-empty path, escaped segment by segment.
var pathViews = map[View]pathView{
	ViewCoursePage:      {"/course/%s/", []*regexp.Regexp{courseIdentifierPattern}},
	ViewStartFlow:       {"/course/%s/flow/%s/start/", []*regexp.Regexp{courseIdentifierPattern, flowIDPattern}},
	ViewContentPage:     {"/course/%s/page/%s/", []*regexp.Regexp{courseIdentifierPattern, pagePathPattern}},
	ViewMedia:           {"/course/%s/media/%s/%s", []*regexp.Regexp{courseIdentifierPattern, commitPattern, nil}},
	ViewRepoFile:        {"/course/%s/file-version/%s/%s", []*regexp.Regexp{courseIdentifierPattern, commitPattern, nil}},
	ViewCurrentRepoFile: {"/course/%s/f/%s", []*regexp.Regexp{courseIdentifierPattern, nil}},
	ViewCalendar:        {"/course/%s/calendar/", []*regexp.Regexp{courseIdentifierPattern}},
}

// PathURLs builds site-relative URLs under Prefix (for example
// "https://learn.example.edu" or "").
type PathURLs struct {
	Prefix string
}

// Reverse implements URLBuilder.
func (p PathURLs) Reverse(view View, args ...string) (string, error) {
	spec, ok := pathViews[view]
	if !ok {
		return "", fmt.Errorf("%w: unknown view %q", ErrNoReverse, view)
	}
	if len(args) != len(spec.patterns) {
		return "", fmt.Errorf("%w: view %s takes %d arguments, got %d", ErrNoReverse, view, len(spec.patterns), len(args))
	}

	values := make([]any, len(args))
	for i, arg := range args {
		pattern := spec.patterns[i]
		switch {
		case pattern != nil && !pattern.MatchString(arg):
			return "", fmt.Errorf("%w: %s argument %q", ErrNoReverse, view, arg)
		case pattern == nil && arg == "":
			return "", fmt.Errorf("%w: %s needs a path", ErrNoReverse, view)
		case pattern == nil:
			values[i] = escapePath(arg)
		default:
			values[i] = arg
		}
	}
	return strings.TrimRight(p.Prefix, "/") + fmt.Sprintf(spec.format, values...), nil
}

// CacheTag distinguishes rendered markup built with different
// prefixes.
func (p PathURLs) CacheTag() string {
	return "path:" + p.Prefix
}

func escapePath(value string) string {
	segments := strings.Split(value, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
