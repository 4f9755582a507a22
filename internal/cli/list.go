package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specdex/specdex/pkg/specs"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var queryType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available releases per source",
		Long: `List prints every release each configured source advertises under the
chosen view: latest (default), released, complete, or prerelease.

The released view hides entries without a version and prerelease versions
that leaked into the released index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := specs.ParseQueryType(queryType)
			if err != nil {
				return err
			}

			f, err := c.newFetcher()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			spin := newSpinner(ctx, "loading indexes...")
			spin.Start()
			listing, err := f.List(ctx, q)
			spin.Stop()
			if err != nil {
				return err
			}

			total := 0
			for _, src := range f.Sources() {
				tuples := listing[src]
				fmt.Println(StyleTitle.Render(src.String()) + " " + StyleDim.Render(fmt.Sprintf("(%d)", len(tuples))))
				for _, t := range tuples {
					printDetail("%s", t)
				}
				total += len(tuples)
			}
			loggerFromContext(ctx).Infof("Listed %d releases across %d sources", total, len(f.Sources()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryType, "type", "t", "latest", "view to list: latest, released, complete, or prerelease")

	return cmd
}
