package cmd

import (
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unisonweb/codeextra/internal/config"
	"github.com/unisonweb/codeextra/internal/site"
)

//go:embed help/build.md
var buildHelp string

func buildCmd(opts *options) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "build [flags]",
		Aliases: []string{"b"},
		Short:   "Render the content directory to HTML",
		Long:    buildHelp,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}

			if cmd.Flag("highlight").Changed {
				cfg.Highlight = opts.highlight
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			builder := site.NewBuilder(cfg,
				site.WithLogger(opts.logger),
				site.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))

			if watch {
				return builder.Watch(ctx)
			}

			_, err = builder.Build(ctx)

			return err
		},

		DisableAutoGenTag: true,
	}

	highlightFlag(cmd, opts)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the content directory changes")

	return cmd
}
