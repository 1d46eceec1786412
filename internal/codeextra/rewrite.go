package codeextra

import (
	"errors"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMissingContainer is returned when a block has no <pre> child. It means
// the upstream renderer changed shape and the block cannot be decorated.
var ErrMissingContainer = errors.New("code block has no <pre> container")

// IsContainer reports whether n is the <pre> element code presentation
// attaches to.
func IsContainer(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Pre
}

// FindContainer returns the first child of nodes matching [IsContainer], or
// nil. Position is not significant.
func FindContainer(nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		if IsContainer(n) {
			return n
		}
	}

	return nil
}

// Rewrite decorates the <pre> container of n in place and returns the wrapper
// element that replaces the block:
//
//	<div class="un-codeblock__wrapper">[label] <pre ...> flair</div>
//
// Children other than the container are not carried into the wrapper.
func Rewrite(n *Node, d Decision) (*html.Node, error) {
	pre := FindContainer(n.Children)
	if pre == nil {
		return nil, ErrMissingContainer
	}

	setAttr(pre, "class", d.Class())

	for _, attr := range d.Attributes {
		setAttr(pre, attr.Key, attr.Val)
	}

	wrapper := element(atom.Div, html.Attribute{Key: "class", Val: ClassWrapper})

	if d.Label != nil {
		wrapper.AppendChild(detach(d.Label))
	}

	wrapper.AppendChild(detach(pre))

	if d.Flair != nil {
		wrapper.AppendChild(detach(d.Flair))
	}

	return wrapper, nil
}

// Enrich runs [Extract], [Decide] and [Rewrite] over n.
func Enrich(n *Node) (*html.Node, error) {
	return Rewrite(n, Decide(Extract(n)))
}

// Render serializes an enriched subtree.
func Render(w io.Writer, subtree *html.Node) error {
	return html.Render(w, subtree)
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val

			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}

	return n
}
