package cmd

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/unisonweb/codeextra/internal/config"
	"github.com/unisonweb/codeextra/internal/site"
)

//go:embed help/render.md
var renderHelp string

func renderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "render [flags] filename",
		Aliases: []string{"r"},
		Short:   "Render one Markdown file to standard output",
		Long:    renderHelp,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			src, err := os.ReadFile(filename)
			if err != nil {
				return err
			}

			doc, err := site.ParseDocument(filepath.ToSlash(filename), src)
			if err != nil {
				return &site.DocumentError{Path: filename, Err: err}
			}

			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}

			if cmd.Flag("highlight").Changed {
				cfg.Highlight = opts.highlight
			}

			builder := site.NewBuilder(cfg, site.WithLogger(opts.logger))

			out, _, err := builder.Render(doc)
			if err != nil {
				return &site.DocumentError{Path: filename, Err: err}
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		},

		DisableAutoGenTag: true,
	}

	highlightFlag(cmd, opts)

	return cmd
}
