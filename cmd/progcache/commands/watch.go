package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/progcache/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Analyze and re-analyze on every source change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")
			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Options:  c.options(args),
				Debounce: debounce,
			})
		},
	}
	cmd.Flags().Duration("debounce", 0, "Quiet period before a batch of changes is processed (0 uses the default)")
	return cmd
}
