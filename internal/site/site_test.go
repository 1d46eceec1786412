package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"
	"time"

	"github.com/liamg/memoryfs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/unisonweb/codeextra/internal/codeextra"
	"github.com/unisonweb/codeextra/internal/config"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func contentFS(t *testing.T, files map[string]string) *memoryfs.FS {
	t.Helper()

	memfs := memoryfs.New()
	for name, content := range files {
		if dir := path.Dir(name); dir != "." {
			require.NoError(t, memfs.MkdirAll(dir, 0o755))
		}

		require.NoError(t, memfs.WriteFile(name, []byte(content), 0o644))
	}

	return memfs
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.ContentDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.Workers = 2

	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readOutput(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(name)))
	require.NoError(t, err)

	return string(data)
}

func TestDiscover(t *testing.T) {
	memfs := contentFS(t, map[string]string{
		"index.md":           "# Home\n",
		"docs/intro.md":      "# Intro\n",
		"docs/drafts/wip.md": "# WIP\n",
		"docs/image.png":     "png",
	})

	paths, err := Discover(memfs, "**.md", "docs/drafts/**")
	require.NoError(t, err)
	require.Equal(t, []string{"docs/intro.md", "index.md"}, paths)

	paths, err = Discover(memfs, "docs/*.md", "")
	require.NoError(t, err)
	require.Equal(t, []string{"docs/intro.md"}, paths)

	_, err = Discover(memfs, "[", "")
	require.Error(t, err)
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument("blog/post.md", []byte("---\ntitle: Hello\ntags: [a]\n---\n# Body\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello", doc.Title())
	require.Equal(t, "# Body\n", string(doc.Body))
	require.Equal(t, 4, doc.BodyLine)
	require.Equal(t, "blog/post.html", doc.OutputPath())

	doc, err = ParseDocument("blog/post.md", []byte("# Body\n"))
	require.NoError(t, err)
	require.Empty(t, doc.Fields)
	require.Zero(t, doc.BodyLine)
	require.Equal(t, "post", doc.Title())

	doc, err = ParseDocument("a.md", []byte("---\r\ntitle: CRLF\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.Equal(t, "CRLF", doc.Title())
	require.Equal(t, "body\r\n", string(doc.Body))
	require.Equal(t, 3, doc.BodyLine)

	doc, err = ParseDocument("a.md", []byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.Empty(t, doc.Fields)
	require.Equal(t, "body\n", string(doc.Body))

	doc, err = ParseDocument("a.md", []byte("---\ntitle: EOF\n---"))
	require.NoError(t, err)
	require.Equal(t, "EOF", doc.Title())
	require.Empty(t, doc.Body)

	_, err = ParseDocument("a.md", []byte("---\ntitle: x\n# Body\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestBuild_WritesEnrichedPages(t *testing.T) {
	cfg := testConfig(t)
	memfs := contentFS(t, map[string]string{
		"index.md":      "---\ntitle: Home\n---\n# Home\n\n```ucm\n.> ls\n```\n",
		"docs/setup.md": "# Setup\n\n" +
			"```yaml\n---\ntitle: Setup\nfilename: config.yaml\nshow-carets: true\n---\nkey: value\n```\n\n" +
			"```go main.go\npackage main\n```\n",
	})

	b := NewBuilder(cfg, WithFS(memfs), WithLogger(quietLogger()))

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Documents)
	require.Equal(t, 3, res.Blocks)
	require.Zero(t, res.Failed)

	index := readOutput(t, cfg, "index.html")
	require.Contains(t, index, "<title>Home</title>")
	require.Contains(t, index, `data-title="UCM"`)

	setup := readOutput(t, cfg, "docs/setup.html")
	require.Contains(t, setup, `<span class="un-codeblock__meta">config.yaml</span>`)
	require.Contains(t, setup, `class="un-codeblock line-numbers un-codeblock--show-numbers un-codeblock--show-carets" data-title="Setup"`)
	require.Contains(t, setup, `<span class="un-codeblock__meta">main.go</span>`)

	m := b.Metrics()
	require.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues(resultOK)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.blocks))

	count, err := testutil.GatherAndCount(m.Registry(), "codeextra_build_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestBuild_DeterministicOutput(t *testing.T) {
	files := map[string]string{
		"a.md": "```go\n---\ntitle: A\nfilename: a.go\n---\nx := 1\n```\n",
		"b.md": "```ucm\n.> add\n```\n",
	}

	cfg1 := testConfig(t)
	_, err := NewBuilder(cfg1, WithFS(contentFS(t, files)), WithLogger(quietLogger())).Build(context.Background())
	require.NoError(t, err)

	cfg2 := testConfig(t)
	cfg2.Workers = 1
	_, err = NewBuilder(cfg2, WithFS(contentFS(t, files)), WithLogger(quietLogger())).Build(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"a.html", "b.html"} {
		require.Equal(t, readOutput(t, cfg1, name), readOutput(t, cfg2, name))
	}
}

func TestBuild_FailuresAreReportedPerDocument(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostBuild = "echo ran > hook.txt"

	memfs := contentFS(t, map[string]string{
		"good.md":          "```go\nx\n```\n",
		"docs/broken.md":   "text\n\n```broken\nx\n```\n",
		"docs/titled.md":   "---\ntitle: x\n---\ntext\n\n```broken\nx\n```\n",
		"docs/unclosed.md": "---\ntitle: x\n",
	})

	noPre := func(lang string, code []byte) []*html.Node {
		if lang == "broken" {
			return []*html.Node{{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}}
		}

		return codeextra.PlainContainer(lang, code)
	}

	b := NewBuilder(cfg,
		WithFS(memfs),
		WithLogger(quietLogger()),
		WithCodeOptions(codeextra.WithContainerBuilder(noPre)))

	res, err := b.Build(context.Background())
	require.Error(t, err)
	require.Equal(t, 3, res.Failed)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	require.Len(t, buildErr.Failures, 3)
	require.Equal(t, "docs/broken.md", buildErr.Failures[0].Path)
	require.Equal(t, "docs/titled.md", buildErr.Failures[1].Path)
	require.Equal(t, "docs/unclosed.md", buildErr.Failures[2].Path)

	require.ErrorIs(t, err, codeextra.ErrMissingContainer)
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)

	var blockErr *codeextra.BlockError
	require.True(t, errors.As(buildErr.Failures[0], &blockErr))
	require.Equal(t, 3, blockErr.Line)
	require.Contains(t, err.Error(), "document docs/broken.md: code block 0 at line 3")

	// Lines are counted from the top of the file, frontmatter included.
	require.True(t, errors.As(buildErr.Failures[1], &blockErr))
	require.Equal(t, 6, blockErr.Line)
	require.Contains(t, err.Error(), "document docs/titled.md: code block 0 at line 6")

	require.FileExists(t, filepath.Join(cfg.OutputDir, "good.html"))
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "docs", "broken.html"))
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "docs", "titled.html"))
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "hook.txt"))

	require.Equal(t, 3.0, testutil.ToFloat64(b.Metrics().documents.WithLabelValues(resultFailed)))
}

func TestBuild_PostBuildHook(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostBuild = "echo built > hook.txt\necho done"

	var stdout bytes.Buffer
	b := NewBuilder(cfg,
		WithFS(contentFS(t, map[string]string{"a.md": "# A\n"})),
		WithLogger(quietLogger()),
		WithOutput(&stdout, io.Discard))

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "built\n", readOutput(t, cfg, "hook.txt"))
	require.Equal(t, "done\n", stdout.String())

	cfg.PostBuild = "exit 3"
	_, err = b.Build(context.Background())
	require.ErrorContains(t, err, "post_build exited with 3")
}

func TestBuild_MetricsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "codeextra.prom")

	b := NewBuilder(cfg,
		WithFS(contentFS(t, map[string]string{"a.md": "```go\nx\n```\n\n```sh\ny\n```\n"})),
		WithLogger(quietLogger()))

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "codeextra_code_blocks_total 2")
	require.Contains(t, string(data), `codeextra_documents_total{result="ok"} 1`)
}

func TestBuild_CancelledContext(t *testing.T) {
	cfg := testConfig(t)
	b := NewBuilder(cfg,
		WithFS(contentFS(t, map[string]string{"a.md": "# A\n"})),
		WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ContentDir, "a.md"), []byte("# A\n"), 0o644))

	b := NewBuilder(cfg, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- b.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, "a.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ContentDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ContentDir, "b.md"), []byte("```ucm\n.> ls\n```\n"), 0o644))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "b.html"))
		return err == nil && bytes.Contains(data, []byte(codeextra.ClassWrapper))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
