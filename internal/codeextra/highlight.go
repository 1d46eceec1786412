package codeextra

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HighlightedContainer renders the <pre><code> container with the body split
// into chroma tokens, each wrapped in a <span> carrying the token's short
// class name. Languages chroma does not know render as [PlainContainer].
func HighlightedContainer(lang string, code []byte) []*html.Node {
	lexer := lexers.Get(lang)
	if lang == "" || lexer == nil {
		return PlainContainer(lang, code)
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, string(code))
	if err != nil {
		return PlainContainer(lang, code)
	}

	c := codeElement(lang)

	for tok := it(); tok != chroma.EOF; tok = it() {
		class := chroma.StandardTypes[tok.Type]
		if class == "" {
			c.AppendChild(textNode(tok.Value))

			continue
		}

		span := element(atom.Span, html.Attribute{Key: "class", Val: class})
		span.AppendChild(textNode(tok.Value))
		c.AppendChild(span)
	}

	return []*html.Node{preElement(c)}
}
