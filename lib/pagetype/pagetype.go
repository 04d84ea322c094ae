// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pagetype

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// ErrNotFound is wrapped by ResolutionError when no handler is known
// for a type name.
var ErrNotFound = errors.New("page type not found")

// repoPrefix marks a type name whose handler lives in the repository.
const repoPrefix = "repo:"

// ResolutionError reports a type name that could not be resolved or
// bound to a handler.
type ResolutionError struct {
	TypeName string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("page type %q: %v", e.TypeName, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Handler is one page of a flow, bound to its descriptor.
type Handler interface {
	TypeName() string

	// Title returns the page title as plain text.
	Title(ctx context.Context) (string, error)

	// Body returns the page body as markup, ready for rendering.
	Body(ctx context.Context) (string, error)
}

// Factory creates a handler for the page descriptor desc found at
// location (a human-readable position used in error messages).
type Factory func(location string, desc document.Value) (Handler, error)

// Origin says where a type name was resolved.
type Origin string

const (
	OriginBuiltin    Origin = "builtin"
	OriginGlobal     Origin = "global"
	OriginRepository Origin = "repository"
)

// Descriptor is a resolved page type.
type Descriptor struct {
	TypeName string
	Origin   Origin
	Factory  Factory
}

// Source reads files from a course repository.
type Source interface {
	Blob(ctx context.Context, commit repo.CommitRef, path string) ([]byte, error)
}

// Binder compiles repository code for a page type and binds the named
// class in it. Implementations must isolate the code from the host.
type Binder interface {
	Bind(ctx context.Context, moduleName string, code []byte, className string) (Factory, error)
}

// Config configures a Registry.
type Config struct {
	// Globals are handlers addressable by dotted name from any course.
	Globals map[string]Factory

	// Binder binds in-repository handlers. Nil disables them.
	Binder Binder

	Logger *slog.Logger
}

// Registry resolves page type names.
type Registry struct {
	builtins map[string]Factory
	globals  map[string]Factory
	binder   Binder
	logger   *slog.Logger
}

// NewRegistry creates a Registry with the built-in handlers and the
// configured globals.
func NewRegistry(config Config) *Registry {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		builtins: map[string]Factory{
			PageTypeName: newMarkupPage,
		},
		globals: maps.Clone(config.Globals),
		binder:  config.Binder,
		logger:  logger,
	}
}

// Resolve finds the handler factory for typeName. In-repository code is
// read from source at commit.
func (r *Registry) Resolve(ctx context.Context, source Source, commit repo.CommitRef, typeName string) (Descriptor, error) {
	if factory, ok := r.builtins[typeName]; ok {
		return Descriptor{TypeName: typeName, Origin: OriginBuiltin, Factory: factory}, nil
	}
	if factory, ok := r.globals[typeName]; ok {
		return Descriptor{TypeName: typeName, Origin: OriginGlobal, Factory: factory}, nil
	}
	if !strings.HasPrefix(typeName, repoPrefix) {
		return Descriptor{}, &ResolutionError{TypeName: typeName, Err: ErrNotFound}
	}

	components := strings.Split(strings.TrimPrefix(typeName, repoPrefix), ".")
	if len(components) != 2 || components[0] == "" || components[1] == "" {
		return Descriptor{}, &ResolutionError{
			TypeName: typeName,
			Err:      fmt.Errorf("%w: repository page type must have the form repo:<module>.<Class>", ErrNotFound),
		}
	}
	if r.binder == nil {
		return Descriptor{}, &ResolutionError{
			TypeName: typeName,
			Err:      errors.New("repository page types are disabled"),
		}
	}

	moduleName, className := components[0], components[1]
	modulePath := "code/" + moduleName + ".lua"
	code, err := source.Blob(ctx, commit, modulePath)
	if err != nil {
		return Descriptor{}, &ResolutionError{TypeName: typeName, Err: fmt.Errorf("reading %s: %w", modulePath, err)}
	}
	factory, err := r.binder.Bind(ctx, modulePath, code, className)
	if err != nil {
		return Descriptor{}, &ResolutionError{TypeName: typeName, Err: err}
	}
	r.logger.Debug("bound repository page type",
		"type", typeName,
		"module", modulePath,
		"commit", commit,
	)
	return Descriptor{TypeName: typeName, Origin: OriginRepository, Factory: factory}, nil
}

// Instantiate resolves the type named by desc's "type" field and
// creates a handler for desc.
func (r *Registry) Instantiate(ctx context.Context, source Source, commit repo.CommitRef, location string, desc document.Value) (Handler, error) {
	typeName, ok := desc.Field("type").AsString()
	if !ok || typeName == "" {
		return nil, &ResolutionError{TypeName: typeName, Err: fmt.Errorf("%s: page has no type", location)}
	}
	descriptor, err := r.Resolve(ctx, source, commit, typeName)
	if err != nil {
		return nil, err
	}
	handler, err := descriptor.Factory(location, desc)
	if err != nil {
		return nil, &ResolutionError{TypeName: typeName, Err: err}
	}
	return handler, nil
}
