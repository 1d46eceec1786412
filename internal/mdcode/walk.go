package mdcode

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var reInfo = regexp.MustCompile(`^\s*(\S+)\s*(.*?)\s*$`)

// Walker is a callback invoked for each fenced code block found in a Markdown
// document, in document order.
type Walker func(block *Block) error

// Walk parses a Markdown document and calls walker for every fenced code block.
// The first error returned by walker stops the walk and is returned.
func Walk(source []byte, walker Walker) error {
	parser := goldmark.DefaultParser()
	reader := text.NewReader(source)
	root := parser.Parse(reader).OwnerDocument()

	return ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb := asFencedCodeBlock(node, entering)
		if fcb == nil {
			return ast.WalkContinue, nil
		}

		if err := walker(FromFenced(fcb, source)); err != nil {
			return ast.WalkStop, err
		}

		return ast.WalkContinue, nil
	})
}

// Unfence parses a Markdown document and returns all fenced code blocks.
func Unfence(source []byte) (Blocks, error) {
	var blocks Blocks

	err := Walk(source, func(block *Block) error {
		blocks = append(blocks, block)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

func asFencedCodeBlock(node ast.Node, entering bool) *ast.FencedCodeBlock {
	if entering || node.Kind() != ast.KindFencedCodeBlock {
		return nil
	}

	if fcb, ok := node.(*ast.FencedCodeBlock); ok {
		return fcb
	}

	return nil
}

// FromFenced builds a Block from a goldmark fenced code block node. Block
// frontmatter is split off the body; malformed frontmatter stays in the code.
func FromFenced(fcb *ast.FencedCodeBlock, source []byte) *Block {
	lang, info := extractInfo(fcb, source)

	block := &Block{Lang: lang, Info: info}
	block.Frontmatter, block.Code = splitFrontmatter(extractCode(fcb, source))
	block.StartLine, block.EndLine = extractLines(fcb, source)

	return block
}

func extractLines(fcb *ast.FencedCodeBlock, source []byte) (int, int) {
	var startLine, endLine int

	if fcb.Info != nil {
		startLine = lineAt(source, fcb.Info.Segment.Start)
	} else {
		lines := fcb.Lines()
		if lines.Len() > 0 {
			startLine = lineAt(source, lines.At(0).Start) - 1
		}
	}

	lines := fcb.Lines()
	if lines.Len() > 0 {
		endLine = lineAt(source, lines.At(lines.Len()-1).Stop)
	} else if startLine > 0 {
		endLine = startLine + 1
	}

	return startLine, endLine
}

func lineAt(source []byte, offset int) int {
	line := 1

	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}

	return line
}

func extractCode(fcb *ast.FencedCodeBlock, source []byte) []byte {
	var buff bytes.Buffer

	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)

		buff.Write(seg.Value(source))
	}

	return buff.Bytes()
}

func extractInfo(fcb *ast.FencedCodeBlock, source []byte) (string, string) {
	if fcb.Info == nil {
		return "", ""
	}

	return parseInfo(fcb.Info.Segment.Value(source))
}

func parseInfo(text []byte) (string, string) {
	all := reInfo.FindSubmatch(text)
	if all == nil {
		return "", ""
	}

	return string(all[1]), strings.TrimSpace(string(all[2]))
}
