package mdcode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// Meta holds key-value metadata parsed from a fenced code block's info string
// or from its frontmatter.
type Meta map[string]interface{}

// Get returns the metadata value for the given key as a string.
// It returns an empty string if the key is missing, its value is null or the
// Meta is nil.
func (m Meta) Get(name string) string {
	if m == nil {
		return ""
	}

	value, has := m[name]
	if !has || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}

var (
	reJSON     = regexp.MustCompile(`^\s*{\s*["}]`)
	reBrackets = regexp.MustCompile(`^\s*{(.*)}$`)
)

// ParseMeta parses a legacy info string. It accepts a JSON object,
// `key=value` words (optionally wrapped in braces, shell quoting allowed) or
// free text. Words without '=' are ignored, so free text yields an empty Meta.
// Malformed input is never an error: it yields an empty Meta.
func ParseMeta(input string) Meta {
	meta, err := parseMeta([]byte(input))
	if err != nil {
		return Meta{}
	}

	return meta
}

func parseMeta(input []byte) (Meta, error) {
	if len(input) == 0 {
		return Meta{}, nil
	}

	if reJSON.Match(input) {
		var meta Meta

		err := json.Unmarshal(input, &meta)
		if err != nil {
			return nil, err
		}

		return meta, nil
	}

	if subs := reBrackets.FindSubmatch(input); subs != nil {
		input = subs[1]
	}

	words, err := shlex.Split(string(input))
	if err != nil {
		return nil, err
	}

	dict := make(Meta)

	for _, word := range words {
		idx := strings.IndexRune(word, '=')
		if idx > 0 {
			dict[word[:idx]] = word[idx+1:]
		}
	}

	return dict, nil
}
