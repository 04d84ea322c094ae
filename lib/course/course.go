// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package course holds the read-only course and participation records
// that content resolution consults, and the viewer context rules are
// evaluated against.
package course

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/bureau-foundation/courseware/lib/repo"
)

// DefaultCourseFile is the course description page at the repository
// root.
const DefaultCourseFile = "course.yml"

// Role is a participant's role in a course.
type Role string

const (
	RoleInstructor        Role = "instructor"
	RoleTeachingAssistant Role = "ta"
	RoleStudent           Role = "student"
	RoleAuditor           Role = "auditor"
	RoleObserver          Role = "observer"

	// RoleUnenrolled is used for viewers without a participation.
	RoleUnenrolled Role = "unenrolled"
)

var roles = []Role{
	RoleInstructor,
	RoleTeachingAssistant,
	RoleStudent,
	RoleAuditor,
	RoleObserver,
	RoleUnenrolled,
}

// Roles returns every role.
func Roles() []Role {
	return slices.Clone(roles)
}

// ParseRole converts a role name.
func ParseRole(name string) (Role, error) {
	role := Role(name)
	if !slices.Contains(roles, role) {
		return "", fmt.Errorf("unknown role %q", name)
	}
	return role, nil
}

// Course is the subset of a course record content resolution needs.
type Course struct {
	// ID is the database identity, used in event lookups and in
	// markup cache keys.
	ID string

	// Identifier names the course's git repository under the git root.
	Identifier string

	// RootPath optionally scopes the course to a subdirectory of its
	// repository.
	RootPath string

	// CourseFile is the course description page. Empty means
	// DefaultCourseFile.
	CourseFile string

	ActiveCommit repo.CommitRef
}

// DescriptionFile returns the course description page path.
func (c *Course) DescriptionFile() string {
	if c.CourseFile == "" {
		return DefaultCourseFile
	}
	return c.CourseFile
}

// Participation is a user's enrollment in a course.
type Participation struct {
	Role Role

	// PreviewCommit, when set and present in the repository, is shown
	// to this participant instead of the course's active commit.
	PreviewCommit repo.CommitRef
}

// Viewer is the context visibility rules are evaluated against.
type Viewer struct {
	Role       Role
	Now        time.Time
	Facilities []string
}

// InFacility reports whether the viewer is in the named facility.
func (v Viewer) InFacility(name string) bool {
	return slices.Contains(v.Facilities, name)
}

// OpenRepository opens the git repository of c under gitRoot, scoped
// to the course root path when one is set.
func OpenRepository(gitRoot string, c *Course) (*repo.Repository, error) {
	if c.Identifier == "" {
		return nil, fmt.Errorf("course %s has no identifier", c.ID)
	}
	store, err := repo.OpenGit(filepath.Join(gitRoot, c.Identifier))
	if err != nil {
		return nil, err
	}
	if c.RootPath != "" {
		return repo.WithSubdir(store, c.RootPath), nil
	}
	return repo.New(store), nil
}

// CommitFor returns the commit a participant sees: their preview
// commit if they have one that exists in the repository, otherwise the
// course's active commit. The existence check uses the unscoped store.
func CommitFor(ctx context.Context, repository *repo.Repository, c *Course, participation *Participation) (repo.CommitRef, error) {
	commit := c.ActiveCommit
	if participation == nil || participation.PreviewCommit == "" {
		return commit, nil
	}
	exists, err := repository.Store().HasCommit(ctx, participation.PreviewCommit)
	if err != nil {
		return "", fmt.Errorf("checking preview commit %s: %w", participation.PreviewCommit, err)
	}
	if exists {
		commit = participation.PreviewCommit
	}
	return commit, nil
}
