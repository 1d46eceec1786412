// Package codeextra enriches fenced code blocks with presentation markup: a
// wrapper element, an optional filename label, numbering and caret classes,
// copy-button data attributes and a trailing flair marker.
//
// The pipeline has three pure stages. [Extract] resolves a [Node] into
// [Metadata], [Decide] turns the metadata into a [Decision], and [Rewrite]
// applies the decision to the node's <pre> container and wraps it. [Enrich]
// runs all three. Nothing is shared between calls, so blocks and documents
// can be processed concurrently.
package codeextra

import (
	"strings"

	"github.com/unisonweb/codeextra/internal/mdcode"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is one fenced code block ready for enrichment.
type Node struct {
	Language   string
	MetaString string
	// Frontmatter is nil when the block carries no frontmatter.
	Frontmatter map[string]any
	BodyLines   [][]byte
	// Children are the already rendered elements of the block. Exactly one of
	// them is expected to be the <pre> container.
	Children []*html.Node
}

// Source is the metadata carried by a block: either a [LegacyMeta] info
// string or [StructuredMeta] frontmatter.
type Source interface {
	source()
}

// LegacyMeta is the free-text info string following the fence language.
type LegacyMeta string

// StructuredMeta is block frontmatter.
type StructuredMeta map[string]any

func (LegacyMeta) source()     {}
func (StructuredMeta) source() {}

// SourceOf returns the metadata source of n. Frontmatter, when present,
// fully supersedes the info string.
func SourceOf(n *Node) Source {
	if n.Frontmatter != nil {
		return StructuredMeta(n.Frontmatter)
	}

	return LegacyMeta(n.MetaString)
}

// ContainerBuilder renders the children of a code block from its language
// and body. The result must contain a <pre> element.
type ContainerBuilder func(lang string, code []byte) []*html.Node

// NewNode builds a Node from a parsed block, rendering its children with
// build. A nil build renders the plain <pre><code> container.
func NewNode(block *mdcode.Block, build ContainerBuilder) *Node {
	if build == nil {
		build = PlainContainer
	}

	return &Node{
		Language:    block.Lang,
		MetaString:  block.Info,
		Frontmatter: block.Frontmatter,
		BodyLines:   block.Lines(),
		Children:    build(block.Lang, block.Code),
	}
}

// PlainContainer renders <pre><code class="language-LANG">code</code></pre>.
func PlainContainer(lang string, code []byte) []*html.Node {
	c := codeElement(lang)
	if len(code) > 0 {
		c.AppendChild(textNode(string(code)))
	}

	return []*html.Node{preElement(c)}
}

func preElement(code *html.Node) *html.Node {
	pre := element(atom.Pre)
	pre.AppendChild(code)

	return pre
}

func codeElement(lang string) *html.Node {
	c := element(atom.Code)
	if lang = strings.TrimSpace(lang); lang != "" {
		c.Attr = append(c.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
	}

	return c
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
