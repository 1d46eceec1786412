package codeextra

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/unisonweb/codeextra/internal/logfields"
	"github.com/unisonweb/codeextra/internal/mdcode"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindCodeBlock is the node kind of [CodeBlock].
var KindCodeBlock = ast.NewNodeKind("CodeExtraBlock")

// CodeBlock replaces a fenced code block in the goldmark AST.
type CodeBlock struct {
	ast.BaseBlock

	Block *mdcode.Block
	// Index is the position of the block among the document's code blocks.
	Index int
}

// Kind implements ast.Node.
func (n *CodeBlock) Kind() ast.NodeKind {
	return KindCodeBlock
}

// IsRaw implements ast.Node.
func (n *CodeBlock) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (n *CodeBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Index": strconv.Itoa(n.Index),
		"Lang":  n.Block.Lang,
		"Info":  n.Block.Info,
	}, nil)
}

// BlockError reports a code block that could not be enriched.
type BlockError struct {
	Index int
	Line  int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("code block %d at line %d: %v", e.Index, e.Line, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Option configures an [Extension].
type Option func(*Extension)

// WithHighlighting switches the container builder to [HighlightedContainer].
func WithHighlighting(on bool) Option {
	return func(e *Extension) {
		if on {
			e.build = HighlightedContainer
		} else {
			e.build = PlainContainer
		}
	}
}

// WithContainerBuilder sets the builder rendering the children of each block.
func WithContainerBuilder(build ContainerBuilder) Option {
	return func(e *Extension) {
		e.build = build
	}
}

// WithLogger sets the logger used for per-block debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// Extension is a goldmark extension that enriches every fenced code block.
type Extension struct {
	build  ContainerBuilder
	logger *slog.Logger
}

// New returns an Extension configured with opts.
func New(opts ...Option) *Extension {
	e := &Extension{build: PlainContainer, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(transformer{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&nodeRenderer{build: e.build, logger: e.logger}, 100),
	))
}

// CountBlocks returns the number of [CodeBlock] nodes under root.
func CountBlocks(root ast.Node) int {
	count := 0

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == KindCodeBlock {
			count++
		}

		return ast.WalkContinue, nil
	})

	return count
}

type transformer struct{}

func (transformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	var fenced []*ast.FencedCodeBlock

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && entering {
			fenced = append(fenced, fcb)
		}

		return ast.WalkContinue, nil
	})

	source := reader.Source()

	for i, fcb := range fenced {
		cb := &CodeBlock{Block: mdcode.FromFenced(fcb, source), Index: i}
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, cb)
	}
}

type nodeRenderer struct {
	build  ContainerBuilder
	logger *slog.Logger
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCodeBlock, r.render)
}

func (r *nodeRenderer) render(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	cb := n.(*CodeBlock)
	node := NewNode(cb.Block, r.build)
	meta := Extract(node)

	subtree, err := Rewrite(node, Decide(meta))
	if err != nil {
		return ast.WalkStop, &BlockError{Index: cb.Index, Line: cb.Block.StartLine, Err: err}
	}

	r.logger.Debug("code block enriched",
		logfields.Block(cb.Index),
		logfields.Language(cb.Block.Lang),
		slog.String("title", meta.Title),
		slog.String("filename", meta.Filename))

	if err := Render(w, subtree); err != nil {
		return ast.WalkStop, err
	}

	_ = w.WriteByte('\n')

	return ast.WalkSkipChildren, nil
}
