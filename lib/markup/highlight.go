// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"bytes"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// nodeRenderer renders fenced code through chroma and emits rewritten
// raw HTML fragments verbatim.
type nodeRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newNodeRenderer(styleName string) *nodeRenderer {
	return &nodeRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(styleName),
	}
}

func (r *nodeRenderer) RegisterFuncs(registerer renderer.NodeRendererFuncRegisterer) {
	registerer.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
	registerer.Register(kindHTMLFragment, r.renderFragment)
	registerer.Register(kindRawFragment, r.renderFragment)
}

func (r *nodeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(source))
	}

	if err := r.highlight(w, string(n.Language(source)), code.String()); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) highlight(w io.Writer, language, code string) error {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	return r.formatter.Format(w, r.style, iterator)
}

func (r *nodeRenderer) renderFragment(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	switch n := node.(type) {
	case *htmlFragment:
		_, _ = w.Write(n.Value)
	case *rawFragment:
		_, _ = w.Write(n.Value)
	}
	return ast.WalkSkipChildren, nil
}

// WriteCodeCSS writes the stylesheet for highlighted code in the named
// chroma style.
func WriteCodeCSS(w io.Writer, styleName string) error {
	if styleName == "" {
		styleName = DefaultCodeStyle
	}
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(styleName))
}
