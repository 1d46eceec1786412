package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocument   = "document"
	KeyBlock      = "block"
	KeyLanguage   = "language"
	KeyBlocks     = "blocks"
	KeyDocuments  = "documents"
	KeyOutput     = "output"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

func Document(path string) slog.Attr  { return slog.String(KeyDocument, path) }
func Block(index int) slog.Attr       { return slog.Int(KeyBlock, index) }
func Language(lang string) slog.Attr  { return slog.String(KeyLanguage, lang) }
func Blocks(n int) slog.Attr          { return slog.Int(KeyBlocks, n) }
func Documents(n int) slog.Attr       { return slog.Int(KeyDocuments, n) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
