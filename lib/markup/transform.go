// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// fixerKey carries the per-conversion LinkFixer in the parser context.
var fixerKey = parser.NewContextKey()

// linkTransformer rewrites internal URLs in the parsed document. Link
// and image destinations are edited in place; raw HTML is replaced by
// fragment nodes holding the rewritten markup.
type linkTransformer struct {
	logger *slog.Logger
}

func (t *linkTransformer) Transform(document *ast.Document, reader text.Reader, pc parser.Context) {
	fixer, _ := pc.Get(fixerKey).(*LinkFixer)
	if fixer == nil {
		return
	}
	source := reader.Source()

	type replacement struct {
		old, new ast.Node
	}
	var replacements []replacement

	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Link:
			n.Destination = fixer.rewriteDestination(n.Destination)
		case *ast.Image:
			n.Destination = fixer.rewriteDestination(n.Destination)
		case *extast.Table:
			n.SetAttributeString("class", []byte(TableClass))
		case *ast.HTMLBlock:
			var raw bytes.Buffer
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				raw.Write(segment.Value(source))
			}
			if n.HasClosure() {
				raw.Write(n.ClosureLine.Value(source))
			}
			if fragment, ok := t.rewrite(fixer, raw.Bytes()); ok {
				replacements = append(replacements, replacement{n, &htmlFragment{Value: fragment}})
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			var raw bytes.Buffer
			for i := 0; i < n.Segments.Len(); i++ {
				segment := n.Segments.At(i)
				raw.Write(segment.Value(source))
			}
			if fragment, ok := t.rewrite(fixer, raw.Bytes()); ok {
				replacements = append(replacements, replacement{n, &rawFragment{Value: fragment}})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, r := range replacements {
		parent := r.old.Parent()
		parent.ReplaceChild(parent, r.old, r.new)
	}
}

// rewrite returns the rewritten fragment, or false when nothing changed
// or the fragment could not be tokenized.
func (t *linkTransformer) rewrite(fixer *LinkFixer, raw []byte) ([]byte, bool) {
	rewritten, err := fixer.RewriteFragment(raw)
	if err != nil {
		t.logger.Warn("leaving raw HTML unrewritten", "error", err)
		return nil, false
	}
	if bytes.Equal(raw, rewritten) {
		return nil, false
	}
	return rewritten, true
}

func (f *LinkFixer) rewriteDestination(destination []byte) []byte {
	if rewritten, ok := f.RewriteURL(string(destination)); ok {
		return []byte(rewritten)
	}
	return destination
}

var (
	kindHTMLFragment = ast.NewNodeKind("HTMLFragment")
	kindRawFragment  = ast.NewNodeKind("RawFragment")
)

// htmlFragment is a block of raw HTML whose links have been rewritten.
type htmlFragment struct {
	ast.BaseBlock
	Value []byte
}

func (n *htmlFragment) Kind() ast.NodeKind { return kindHTMLFragment }

func (n *htmlFragment) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// rawFragment is inline raw HTML whose links have been rewritten.
type rawFragment struct {
	ast.BaseInline
	Value []byte
}

func (n *rawFragment) Kind() ast.NodeKind { return kindRawFragment }

func (n *rawFragment) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}
