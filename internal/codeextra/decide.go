package codeextra

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names and attributes shared with the site stylesheet and client script.
const (
	ClassBase        = "un-codeblock"
	ClassLineNumbers = "line-numbers"
	ClassShowNumbers = "un-codeblock--show-numbers"
	ClassShowCarets  = "un-codeblock--show-carets"
	ClassWrapper     = "un-codeblock__wrapper"
	ClassLabel       = "un-codeblock__meta"
	ClassFlair       = "un-codeblock__flair"

	AttrTitle          = "data-title"
	AttrShowCopyButton = "data-show-copy-button"
)

// Decision is the markup computed for one code block.
type Decision struct {
	// ClassNames is ordered: base classes, numbering modifier, caret modifier.
	ClassNames []string
	// Attributes are set on the <pre> container in this order.
	Attributes []html.Attribute
	// Label is the filename label, nil when the block has no filename.
	Label *html.Node
	// Flair is the trailing marker. It is always present.
	Flair *html.Node
}

// Class returns the class attribute value for the <pre> container.
func (d Decision) Class() string {
	return strings.Join(d.ClassNames, " ")
}

// Decide computes the markup for meta.
func Decide(meta Metadata) Decision {
	classes := []string{ClassBase, ClassLineNumbers}
	if meta.ShowNumbers {
		classes = append(classes, ClassShowNumbers)
	}

	if meta.ShowCarets {
		classes = append(classes, ClassShowCarets)
	}

	d := Decision{
		ClassNames: classes,
		Attributes: []html.Attribute{
			{Key: AttrTitle, Val: meta.Title},
			{Key: AttrShowCopyButton, Val: strconv.Itoa(meta.ShowCopyButton)},
		},
		Flair: element(atom.Span,
			html.Attribute{Key: "class", Val: ClassFlair},
			html.Attribute{Key: "aria-hidden", Val: "true"},
		),
	}

	if meta.Filename != "" {
		d.Label = element(atom.Span, html.Attribute{Key: "class", Val: ClassLabel})
		d.Label.AppendChild(textNode(meta.Filename))
	}

	return d
}
