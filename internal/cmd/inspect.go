package cmd

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/unisonweb/codeextra/internal/codeextra"
	"github.com/unisonweb/codeextra/internal/mdcode"
)

//go:embed help/inspect.md
var inspectHelp string

func inspectCmd(_ *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "inspect filename",
		Aliases: []string{"i"},
		Short:   "List code blocks and their resolved presentation",
		Long:    inspectHelp,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			return inspectRun(cmd.OutOrStdout(), src)
		},

		DisableAutoGenTag: true,
	}

	return cmd
}

func inspectRun(w io.Writer, src []byte) error {
	blocks, err := mdcode.Unfence(src)
	if err != nil {
		return err
	}

	tbl := table.New("Block", "Lines", "Lang", "Title", "Filename", "Class", "Copy").WithWriter(w)

	for i, block := range blocks {
		d := codeextra.Decide(codeextra.Extract(codeextra.NewNode(block, codeextra.PlainContainer)))

		tbl.AddRow(i,
			fmt.Sprintf("%d-%d", block.StartLine, block.EndLine),
			block.Lang,
			attr(d, codeextra.AttrTitle),
			labelText(d),
			d.Class(),
			attr(d, codeextra.AttrShowCopyButton),
		)
	}

	tbl.Print()

	return nil
}

func attr(d codeextra.Decision, key string) string {
	for _, a := range d.Attributes {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func labelText(d codeextra.Decision) string {
	if d.Label == nil || d.Label.FirstChild == nil {
		return "-"
	}

	return d.Label.FirstChild.Data
}
