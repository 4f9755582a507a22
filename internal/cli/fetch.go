package cli

import (
	"github.com/spf13/cobra"

	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/platform"
	"github.com/specdex/specdex/pkg/specs"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <name> <version> [platform]",
		Short: "Fetch and print one full descriptor",
		Long: `Fetch resolves the descriptor for one exact release, trying each
configured source in order. The platform argument defaults to the
universal platform; pass e.g. "x86_64-linux" for a platform-specific
build.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePackageName(args[0]); err != nil {
				return err
			}
			tup := specs.Tuple{Name: args[0], Version: args[1]}
			if len(args) == 3 {
				tup.Platform = platform.Parse(args[2])
			}

			f, err := c.newFetcher()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			spin := newSpinner(ctx, "fetching descriptor...")
			spin.Start()
			d, src, err := f.FindDescriptor(ctx, tup)
			spin.Stop()
			if err != nil {
				return err
			}

			printDescriptor(d, src.String())
			return nil
		},
	}
}
