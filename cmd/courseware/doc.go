// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Courseware resolves course content from a course's git repository
// the way a course site would serve it: static pages with their
// visibility-filtered chunks, flows and flow pages, date
// specifications against the course's events, and per-role file
// access. Results are written to stdout as JSON (indented when stdout
// is a terminal).
//
// Configuration comes from the file named by --config or the
// COURSEWARE_CONFIG environment variable; see lib/config. The course
// is selected with --course, which names a repository under the
// configured git root, and viewed at --commit (default: the
// repository's HEAD).
//
//	courseware page --course cs101 --role ta course.yml
//	courseware flow --course cs101 quiz main/intro
//	courseware date --course cs101 "end:homework 3 - 1 day @ 23:59"
//	courseware events import --course cs101 events.yml
//	courseware validate --course cs101
package main
