// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/courseware/cmd/courseware/cli"
	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/clock"
	"github.com/bureau-foundation/courseware/lib/config"
	"github.com/bureau-foundation/courseware/lib/content"
	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/datespec"
	"github.com/bureau-foundation/courseware/lib/event"
	"github.com/bureau-foundation/courseware/lib/git"
	"github.com/bureau-foundation/courseware/lib/markup"
	"github.com/bureau-foundation/courseware/lib/pagetype"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// courseParams are the flags shared by every command that reads a
// course.
type courseParams struct {
	ConfigPath  string
	Course      string
	CourseID    string
	RootPath    string
	CourseFile  string
	Commit      string
	Preview     string
	Role        string
	Now         string
	Facilities  []string
	Verbose     bool
	MetricsFile string
}

// AddFlags registers the course selection flags on flagSet.
func (p *courseParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&p.Course, "course", "", "course identifier: the repository name under paths.git_root")
	flagSet.StringVar(&p.CourseID, "course-id", "", "course identity for event lookups (default: --course)")
	flagSet.StringVar(&p.RootPath, "root-path", "", "subdirectory of the repository holding the course")
	flagSet.StringVar(&p.CourseFile, "course-file", "", "course description page (default: "+course.DefaultCourseFile+")")
	flagSet.StringVar(&p.Commit, "commit", "", "active commit (default: the repository HEAD)")
	flagSet.StringVar(&p.Preview, "preview", "", "preview commit shown instead of the active commit when it exists")
	flagSet.StringVar(&p.Role, "role", string(course.RoleStudent), "viewer role")
	flagSet.StringVar(&p.Now, "now", "", "evaluate as of this time (RFC 3339, or YYYY-MM-DD[ HH:MM] in the content time zone)")
	flagSet.StringArrayVar(&p.Facilities, "facility", nil, "facility the viewer is in (repeatable)")
	flagSet.BoolVarP(&p.Verbose, "verbose", "v", false, "log at debug level")
	flagSet.StringVar(&p.MetricsFile, "metrics-file", "", "write cache metrics in Prometheus text format to this file on exit")
}

// newFlagSet returns a flag set carrying the course flags.
func newFlagSet(name string, params *courseParams) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	params.AddFlags(flagSet)
	return flagSet
}

// session holds the services one command invocation needs.
type session struct {
	config   *config.Config
	logger   *slog.Logger
	location *time.Location
	events   eventStore
	dates    *datespec.Resolver
	loader   *content.Loader
	course   *course.Course
	viewer   course.Viewer

	// Set by openCourse.
	repository *repo.Repository
	commit     repo.CommitRef

	metricsFile string
	closers     []func() error
}

// eventStore is the subset of the event stores commands use.
type eventStore interface {
	event.Finder
	Put(ctx context.Context, events ...event.Event) error
	Events(ctx context.Context, courseID string) ([]event.Event, error)
}

// openSession loads configuration and builds the content services.
// The course repository is opened separately by openCourse.
func openSession(params *courseParams) (*session, error) {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if params.Verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(level)

	location, err := cfg.Content.Location()
	if err != nil {
		return nil, err
	}

	s := &session{
		config:      cfg,
		logger:      logger,
		location:    location,
		metricsFile: params.MetricsFile,
	}

	contentCache, err := s.openCache()
	if err != nil {
		s.Close()
		return nil, err
	}

	store, err := event.OpenSQLite(event.SQLiteConfig{
		Path:     cfg.Events.Database,
		PoolSize: cfg.Events.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening event store: %w", err)
	}
	s.events = store
	s.closers = append(s.closers, store.Close)

	now, err := parseNow(params.Now, location)
	if err != nil {
		s.Close()
		return nil, err
	}
	var courseClock clock.Clock = clock.Real()
	if !now.IsZero() {
		courseClock = clock.Fake(now)
	}

	s.dates = datespec.NewResolver(datespec.Config{
		Events:   store,
		Location: location,
		Clock:    courseClock,
		Logger:   logger,
	})

	var binder pagetype.Binder
	if cfg.Content.LuaHandlers {
		binder = pagetype.LuaBinder{}
	}

	s.loader, err = content.New(content.Config{
		Cache: contentCache,
		Markup: markup.New(markup.Config{
			URLs:      markup.PathURLs{Prefix: cfg.Content.URLPrefix},
			Cache:     contentCache,
			CodeStyle: cfg.Content.CodeStyle,
			Logger:    logger,
		}),
		Dates:           s.dates,
		Handlers:        pagetype.NewRegistry(pagetype.Config{Binder: binder, Logger: logger}),
		MaxIncludeDepth: cfg.Content.MaxIncludeDepth,
		Logger:          logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := s.setCourse(params); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache builds the content cache from the cache section. The
// "none" backend returns a nil cache, which computes every value.
func (s *session) openCache() (*cache.Cache, error) {
	section := s.config.Cache

	var backend cache.Backend
	switch section.Backend {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		backend = cache.NewMemoryBackend(nil)
	case config.CacheBadger:
		badgerBackend, err := cache.OpenBadger(cache.BadgerConfig{
			Path:   section.Path,
			Logger: s.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		backend = badgerBackend
		s.closers = append(s.closers, badgerBackend.Close)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", section.Backend)
	}

	compression, err := cache.ParseCompression(section.Compression)
	if err != nil {
		return nil, err
	}
	ttl, err := section.TTLDuration()
	if err != nil {
		return nil, err
	}
	return cache.New(cache.Config{
		Backend:      backend,
		MaxBytes:     section.MaxBytes,
		MaxKeyLength: section.MaxKeyLength,
		TTL:          ttl,
		Compression:  compression,
		Logger:       s.logger,
	}), nil
}

// setCourse builds the course record and viewer from the flags.
func (s *session) setCourse(params *courseParams) error {
	role, err := course.ParseRole(params.Role)
	if err != nil {
		return err
	}
	s.viewer = course.Viewer{
		Role:       role,
		Now:        s.dates.Now(),
		Facilities: params.Facilities,
	}

	if params.Course == "" {
		return nil
	}
	id := params.CourseID
	if id == "" {
		id = params.Course
	}
	s.course = &course.Course{
		ID:           id,
		Identifier:   params.Course,
		RootPath:     params.RootPath,
		CourseFile:   params.CourseFile,
		ActiveCommit: repo.CommitRef(params.Commit),
	}
	return nil
}

// requireCourse fails when no --course was given.
func (s *session) requireCourse() error {
	if s.course == nil {
		return errors.New("--course is required")
	}
	return nil
}

// openCourse opens the course repository and picks the commit the
// viewer sees.
func (s *session) openCourse(ctx context.Context, preview string) error {
	if err := s.requireCourse(); err != nil {
		return err
	}
	repository, err := course.OpenRepository(s.config.Paths.GitRoot, s.course)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, repository.Close)

	if s.course.ActiveCommit == "" {
		head, err := git.NewRepository(filepath.Join(s.config.Paths.GitRoot, s.course.Identifier)).
			Run(ctx, "rev-parse", "--verify", "HEAD^{commit}")
		if err != nil {
			return fmt.Errorf("resolving HEAD of course %s: %w", s.course.Identifier, err)
		}
		s.course.ActiveCommit = repo.CommitRef(strings.TrimSpace(head))
	}

	var participation *course.Participation
	if preview != "" {
		participation = &course.Participation{
			Role:          s.viewer.Role,
			PreviewCommit: repo.CommitRef(preview),
		}
	}
	commit, err := course.CommitFor(ctx, repository, s.course, participation)
	if err != nil {
		return err
	}

	s.repository = repository
	s.commit = commit
	s.logger = s.logger.With("course", s.course.Identifier, "commit", string(commit))
	return nil
}

// Close releases the session's stores in reverse order of opening and
// writes the metrics file when one was requested.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if s.metricsFile != "" {
		if err := prometheus.WriteToTextfile(s.metricsFile, prometheus.DefaultGatherer); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// nowLayouts are the accepted --now formats besides RFC 3339.
var nowLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseNow parses the --now flag. Empty returns the zero time.
func parseNow(value string, location *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range nowLayouts {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--now %q is not a recognized time", value)
}
