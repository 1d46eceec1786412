package site

import (
	"bytes"
	"path"
	"strings"

	"github.com/unisonweb/codeextra/internal/mdcode"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = mdcode.ErrMissingClosingDelimiter

// Document is one Markdown source file.
type Document struct {
	// Path is slash-separated and relative to the content root.
	Path string
	// Fields holds the document frontmatter; empty when there is none.
	Fields map[string]any
	Body   []byte
	// BodyLine is the number of source lines preceding Body.
	BodyLine int
}

// Title returns the frontmatter title, or the file name without extension.
func (d *Document) Title() string {
	if title, ok := d.Fields["title"].(string); ok && title != "" {
		return title
	}

	return strings.TrimSuffix(path.Base(d.Path), path.Ext(d.Path))
}

// OutputPath returns the slash-separated path of the rendered page.
func (d *Document) OutputPath() string {
	return strings.TrimSuffix(d.Path, path.Ext(d.Path)) + ".html"
}

// ParseDocument splits the YAML frontmatter off content. A document without an
// opening delimiter is all body.
func ParseDocument(p string, content []byte) (*Document, error) {
	raw, body, found, err := mdcode.CutFrontmatter(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: p, Fields: map[string]any{}, Body: body}
	if !found {
		return doc, nil
	}

	if doc.Fields, err = mdcode.ParseFrontmatter(raw); err != nil {
		return nil, err
	}

	doc.BodyLine = bytes.Count(content[:len(content)-len(body)], []byte("\n"))

	return doc, nil
}
