// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"context"

	"github.com/bureau-foundation/courseware/lib/cache"
	"github.com/bureau-foundation/courseware/lib/document"
	"github.com/bureau-foundation/courseware/lib/repo"
)

// Load reads the document at path, expands it and parses the result.
// The parsed document is cached by repository identity, path and
// commit. Normalization is left to the caller, which knows whether the
// document is a page or a flow.
func (e *Expander) Load(ctx context.Context, commit repo.CommitRef, path string) (document.Value, error) {
	key := cache.Key{
		Kind:     cache.KindDocument,
		Identity: e.repository.Identity(),
		Path:     e.repository.FullPath(path),
		Commit:   string(commit),
	}
	return cache.Get(ctx, e.cache, key, func(ctx context.Context) (document.Value, error) {
		return e.LoadUncached(ctx, commit, path)
	})
}

// LoadUncached is Load without the document cache. Blob reads and
// includes still go through the byte cache.
func (e *Expander) LoadUncached(ctx context.Context, commit repo.CommitRef, path string) (document.Value, error) {
	data, err := e.Blob(ctx, commit, path)
	if err != nil {
		return document.Value{}, err
	}
	expanded, err := e.expand(ctx, commit, path, string(data))
	if err != nil {
		return document.Value{}, err
	}
	return e.Parse(commit, path, expanded)
}

// Parse parses expanded text, reporting failures as StructuralError.
func (e *Expander) Parse(commit repo.CommitRef, path, expanded string) (document.Value, error) {
	value, err := document.Parse([]byte(expanded))
	if err != nil {
		e.logger.Debug("expanded document is not valid YAML",
			"path", path,
			"commit", commit,
			"error", err,
		)
		return document.Value{}, &StructuralError{Path: path, Commit: commit, Err: err}
	}
	return value, nil
}
