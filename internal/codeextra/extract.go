package codeextra

import (
	"strings"

	"github.com/unisonweb/codeextra/internal/mdcode"
)

// Frontmatter keys understood by [Extract].
const (
	KeyTitle          = "title"
	KeyFilename       = "filename"
	KeyShowNumbers    = "show-numbers"
	KeyShowCarets     = "show-carets"
	KeyShowCopyButton = "show-copy-button"
)

const (
	defaultTitle = "Code"
	ucmTitle     = "UCM"
	ucmLanguage  = "ucm"
)

// Metadata is the resolved presentation metadata of one code block.
type Metadata struct {
	Title string
	// Filename is empty when the block has no filename.
	Filename    string
	ShowNumbers bool
	ShowCarets  bool
	// ShowCopyButton is 0 or 1. It is an integer because the client script
	// parses the data attribute as a number.
	ShowCopyButton int
}

// Extract resolves the metadata of n. It never fails: missing keys and values
// of an unexpected type or literal fall through to defaults.
//
// Flags compare against the exact YAML boolean, so the string "false" does not
// turn numbering off.
func Extract(n *Node) Metadata {
	meta := Metadata{
		Title:          languageTitle(n.Language),
		ShowNumbers:    true,
		ShowCopyButton: 1,
	}

	switch src := SourceOf(n).(type) {
	case StructuredMeta:
		fields := mdcode.Meta(src)

		if title := fields.Get(KeyTitle); title != "" {
			meta.Title = title
		}

		meta.Filename = fields.Get(KeyFilename)

		if isLiteral(src[KeyShowNumbers], false) {
			meta.ShowNumbers = false
		}

		if isLiteral(src[KeyShowCarets], true) {
			meta.ShowCarets = true
		}

		if isLiteral(src[KeyShowCopyButton], false) {
			meta.ShowCopyButton = 0
		}
	case LegacyMeta:
		meta.Filename = legacyFilename(string(src))
	}

	return meta
}

func languageTitle(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), ucmLanguage) {
		return ucmTitle
	}

	return defaultTitle
}

func isLiteral(value any, want bool) bool {
	b, ok := value.(bool)

	return ok && b == want
}

// legacyFilename reads the filename label from an info string: a filename= or
// file= word when there is one, otherwise the whole string.
func legacyFilename(info string) string {
	info = strings.TrimSpace(info)
	if info == "" {
		return ""
	}

	meta := mdcode.ParseMeta(info)
	for _, key := range []string{KeyFilename, "file"} {
		if v := meta.Get(key); v != "" {
			return v
		}
	}

	return info
}
