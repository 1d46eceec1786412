// Package cmd implements the codeextra command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfig = "codeextra.yaml"

type options struct {
	config    string
	verbose   bool
	highlight bool
	logger    *slog.Logger
}

func (opts *options) createLogger(w io.Writer) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	opts.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(opts.logger)
}

// Execute runs the command line with args and exits non-zero on failure.
func Execute(args []string, stdout, stderr io.Writer) {
	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := new(options)

	root := &cobra.Command{ //nolint:exhaustruct
		Use:   "codeextra",
		Short: "Render Markdown with enriched code blocks",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.createLogger(cmd.ErrOrStderr())
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().StringVarP(&opts.config, "config", "c", defaultConfig, "configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(buildCmd(opts), renderCmd(opts), inspectCmd(opts))

	return root
}

func highlightFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().BoolVar(&opts.highlight, "highlight", false, "tokenise code with chroma")
}
