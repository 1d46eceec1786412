package mdcode

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const fence = "---"

var (
	// ErrMissingClosingDelimiter indicates the input started with a
	// frontmatter delimiter but did not contain a closing delimiter.
	ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

	errNotMapping = errors.New("frontmatter is not a mapping")
)

// CutFrontmatter splits a leading `---` delimited section off src. It returns
// the raw section between the delimiters and the remaining body. found is
// false, and body is src, when src does not open with a delimiter line. The
// closing delimiter may end src without a line terminator.
func CutFrontmatter(src []byte) (raw, body []byte, found bool, err error) {
	first, rest, ok := cutLine(src)
	if !ok || !isFence(first) {
		return nil, src, false, nil
	}

	for remaining := rest; ; {
		line, next, more := cutLine(remaining)
		if isFence(line) {
			return rest[:len(rest)-len(remaining)], next, true, nil
		}

		if !more {
			return nil, nil, true, ErrMissingClosingDelimiter
		}

		remaining = next
	}
}

// ParseFrontmatter decodes a raw frontmatter section. Blank input yields an
// empty map; anything but a YAML mapping is an error.
func ParseFrontmatter(raw []byte) (map[string]any, error) {
	fields := map[string]any{}

	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}

	if len(node.Content) == 0 {
		return fields, nil
	}

	if node.Content[0].Kind != yaml.MappingNode {
		return nil, errNotMapping
	}

	if err := node.Decode(&fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// splitFrontmatter separates a leading YAML mapping from a block body. When
// the body has no well-formed frontmatter, fields is nil and body is code
// unchanged.
func splitFrontmatter(code []byte) (map[string]any, []byte) {
	raw, body, found, err := CutFrontmatter(code)
	if !found || err != nil {
		return nil, code
	}

	fields, err := ParseFrontmatter(raw)
	if err != nil {
		return nil, code
	}

	return fields, body
}

// cutLine returns the first line of b without its terminator, the remainder
// after it, and whether a terminator was found.
func cutLine(b []byte) ([]byte, []byte, bool) {
	line, rest, found := bytes.Cut(b, []byte("\n"))

	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

func isFence(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == fence
}
