// Package config loads build settings from a YAML or JSONC file, a .env file
// and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file settings.
const (
	EnvContentDir = "CODEEXTRA_CONTENT_DIR"
	EnvOutputDir  = "CODEEXTRA_OUTPUT_DIR"
	EnvWorkers    = "CODEEXTRA_WORKERS"
)

// Config holds build settings.
type Config struct {
	ContentDir string `yaml:"content_dir" json:"content_dir"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
	// Include and Exclude are glob patterns over slash-separated paths
	// relative to ContentDir. "**" crosses directories.
	Include   string `yaml:"include" json:"include"`
	Exclude   string `yaml:"exclude" json:"exclude"`
	Workers   int    `yaml:"workers" json:"workers"`
	Highlight bool   `yaml:"highlight" json:"highlight"`
	// MetricsFile, when set, receives build counters in Prometheus text format.
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	// PostBuild is a shell script run in OutputDir after a successful build.
	PostBuild string `yaml:"post_build" json:"post_build"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ContentDir: "content",
		OutputDir:  "public",
		Include:    "**.md",
		Workers:    runtime.NumCPU(),
	}
}

// Load reads path over the defaults, then applies .env and environment
// overrides. A missing config or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		err = yaml.Unmarshal(data, c)
	}

	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvContentDir); ok && v != "" {
		c.ContentDir = v
	}

	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}

	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}

		c.Workers = n
	}

	return nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks the configuration for values a build cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ContentDir == "":
		return fmt.Errorf("%w: content_dir is empty", ErrInvalid)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir is empty", ErrInvalid)
	case filepath.Clean(c.ContentDir) == filepath.Clean(c.OutputDir):
		return fmt.Errorf("%w: content_dir and output_dir are the same directory", ErrInvalid)
	case within(c.ContentDir, c.OutputDir):
		return fmt.Errorf("%w: output_dir %s is inside content_dir %s", ErrInvalid, c.OutputDir, c.ContentDir)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}

	patterns := []struct{ name, pattern string }{
		{"include", c.Include},
		{"exclude", c.Exclude},
	}

	for _, p := range patterns {
		if p.pattern == "" {
			continue
		}

		if _, err := glob.Compile(p.pattern, '/'); err != nil {
			return fmt.Errorf("%w: %s pattern %q: %v", ErrInvalid, p.name, p.pattern, err)
		}
	}

	return nil
}

// within reports whether dir is nested below root.
func within(root, dir string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return false
	}

	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
