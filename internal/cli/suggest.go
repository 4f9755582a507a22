package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// suggestCommand creates the suggest command.
func (c *CLI) suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <name>",
		Short: "Print package names similar to the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.newFetcher()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			spin := newSpinner(ctx, "scanning names...")
			spin.Start()
			names, err := f.Suggest(ctx, args[0])
			spin.Stop()
			if err != nil {
				return err
			}

			if len(names) == 0 {
				printInfo("No similar names found for %s", StyleHighlight.Render(args[0]))
				return nil
			}
			for _, n := range names {
				fmt.Println(StyleValue.Render(n))
			}
			return nil
		},
	}
}
