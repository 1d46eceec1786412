package mdcode

import "bytes"

// Block is one fenced code block as found in a Markdown document.
type Block struct {
	Lang string
	// Info is the info string after the language word: the legacy meta string.
	Info string
	// Frontmatter is the YAML mapping at the top of the block body. It is nil
	// when the block has none and non-nil (possibly empty) when it has one.
	Frontmatter map[string]any
	// Code is the block body with any frontmatter removed.
	Code      []byte
	StartLine int
	EndLine   int
}

type Blocks []*Block

// Lines returns Code split into lines, each keeping its line terminator.
func (b *Block) Lines() [][]byte {
	if len(b.Code) == 0 {
		return nil
	}

	lines := bytes.SplitAfter(b.Code, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	return lines
}
