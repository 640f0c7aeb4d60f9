package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file.tex>",
		Short: "Build a document and rebuild it whenever a source changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Watch(cmd.Context(), args[0], opts)
		},
	}
	addBuildFlags(cmd)
	return cmd
}
