// Package site renders a tree of Markdown documents to HTML pages, enriching
// their code blocks on the way.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/unisonweb/codeextra/internal/codeextra"
	"github.com/unisonweb/codeextra/internal/config"
	"github.com/unisonweb/codeextra/internal/logfields"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/sync/errgroup"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}</body>
</html>
`))

// Result summarises one build.
type Result struct {
	Documents int
	Blocks    int
	Failed    int
	Duration  time.Duration
}

// Builder renders the documents selected by a configuration.
type Builder struct {
	cfg     *config.Config
	fsys    fs.FS
	md      goldmark.Markdown
	metrics *Metrics
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer

	codeOpts []codeextra.Option
}

// Option configures a Builder.
type Option func(*Builder)

// WithFS reads documents from fsys instead of the content directory.
func WithFS(fsys fs.FS) Option {
	return func(b *Builder) { b.fsys = fsys }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithOutput sets where the post-build hook writes its output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) { b.stdout, b.stderr = stdout, stderr }
}

// WithCodeOptions passes extra options to the code block extension.
func WithCodeOptions(opts ...codeextra.Option) Option {
	return func(b *Builder) { b.codeOpts = append(b.codeOpts, opts...) }
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:     cfg,
		fsys:    os.DirFS(cfg.ContentDir),
		metrics: NewMetrics(),
		logger:  slog.Default(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		opt(b)
	}

	codeOpts := append([]codeextra.Option{
		codeextra.WithHighlighting(cfg.Highlight),
		codeextra.WithLogger(b.logger),
	}, b.codeOpts...)

	b.md = goldmark.New(goldmark.WithExtensions(extension.GFM, codeextra.New(codeOpts...)))

	return b
}

// Metrics returns the builder's counters.
func (b *Builder) Metrics() *Metrics {
	return b.metrics
}

// Build renders every selected document. A failing document does not stop the
// others; all failures are returned together as a *BuildError. The post-build
// hook runs only when every document succeeded.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	paths, err := Discover(b.fsys, b.cfg.Include, b.cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}

	var (
		mu       sync.Mutex
		result   = &Result{Documents: len(paths)}
		failures []*DocumentError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			blocks, err := b.buildDocument(p)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failures = append(failures, &DocumentError{Path: p, Err: err})
				b.metrics.documents.WithLabelValues(resultFailed).Inc()
				b.logger.Error("document failed", logfields.Document(p), logfields.Error(err))

				return nil
			}

			result.Blocks += blocks
			b.metrics.documents.WithLabelValues(resultOK).Inc()
			b.metrics.blocks.Add(float64(blocks))
			b.logger.Debug("document rendered", logfields.Document(p), logfields.Blocks(blocks))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Failed = len(failures)
	result.Duration = time.Since(start)
	b.metrics.duration.Observe(result.Duration.Seconds())

	b.logger.Info("build finished",
		logfields.Output(b.cfg.OutputDir),
		logfields.Documents(result.Documents),
		logfields.Blocks(result.Blocks),
		slog.Int("failed", result.Failed),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))

	if b.cfg.MetricsFile != "" {
		if err := b.metrics.WriteFile(b.cfg.MetricsFile); err != nil {
			b.logger.Warn("writing metrics failed", logfields.Path(b.cfg.MetricsFile), logfields.Error(err))
		}
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })

		return result, &BuildError{Failures: failures}
	}

	if b.cfg.PostBuild != "" {
		if err := os.MkdirAll(b.cfg.OutputDir, dirMode); err != nil {
			return result, err
		}

		if err := runHook(ctx, b.cfg.PostBuild, b.cfg.OutputDir, b.stdout, b.stderr); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (b *Builder) buildDocument(p string) (int, error) {
	src, err := fs.ReadFile(b.fsys, p)
	if err != nil {
		return 0, err
	}

	doc, err := ParseDocument(p, src)
	if err != nil {
		return 0, err
	}

	out, blocks, err := b.Render(doc)
	if err != nil {
		return 0, err
	}

	target := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(doc.OutputPath()))
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return 0, err
	}

	return blocks, os.WriteFile(target, out, fileMode)
}

// Render renders doc to a full HTML page and returns it with the number of
// code blocks it contained.
func (b *Builder) Render(doc *Document) ([]byte, int, error) {
	root := b.md.Parser().Parse(text.NewReader(doc.Body))

	var body bytes.Buffer
	if err := b.md.Renderer().Render(&body, doc.Body, root); err != nil {
		// Block lines count from the body; report them against the file.
		var blockErr *codeextra.BlockError
		if errors.As(err, &blockErr) {
			blockErr.Line += doc.BodyLine
		}

		return nil, 0, err
	}

	var out bytes.Buffer

	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{doc.Title(), template.HTML(body.String())}) //nolint:gosec
	if err != nil {
		return nil, 0, err
	}

	return out.Bytes(), codeextra.CountBlocks(root), nil
}
