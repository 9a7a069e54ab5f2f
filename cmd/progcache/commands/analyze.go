package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Build or reuse the programs for the given files",
		Long: "Resolve the project and serve every given file through the program cache.\n" +
			"Without files every root file of the project and its references is analyzed.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Analyze(cmd.Context(), c.options(args))
			return err
		},
	}
}
