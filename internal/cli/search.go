package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specdex/specdex/pkg/platform"
	"github.com/specdex/specdex/pkg/specs"
)

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	prerelease  bool // include prerelease variants
	latest      bool // only the newest released variant
	anyPlatform bool // skip local-platform filtering
	full        bool // fetch full descriptors, not just tuples
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search <name> [constraint]",
		Short: "Find releases matching a name and version constraint",
		Long: `Search queries every configured source for releases of a package,
optionally narrowed by a version constraint such as ">= 7.0, < 8".

By default only releases built for the local platform (or for any platform)
are shown; releases excluded by platform filtering are reported separately.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraint := ""
			if len(args) == 2 {
				constraint = args[1]
			}
			dep, err := specs.NewDependency(args[0], constraint)
			if err != nil {
				return err
			}
			dep.Prerelease = opts.prerelease
			dep.Latest = opts.latest

			f, err := c.newFetcher()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			spin := newSpinner(ctx, "searching sources...")
			spin.Start()
			if opts.full {
				matches, mismatch, err := f.SpecForDependency(ctx, *dep, !opts.anyPlatform)
				spin.Stop()
				if err != nil {
					return err
				}
				printMismatch(mismatch)
				if len(matches) == 0 {
					return c.reportNotFound(cmd, f, dep.Name)
				}
				for _, m := range matches {
					printDescriptor(m.Spec, m.Source.String())
				}
				prog.done(fmt.Sprintf("Resolved %d descriptors", len(matches)))
				return nil
			}

			matches, mismatch, err := f.Search(ctx, *dep, !opts.anyPlatform)
			spin.Stop()
			if err != nil {
				return err
			}
			printMismatch(mismatch)
			if len(matches) == 0 {
				return c.reportNotFound(cmd, f, dep.Name)
			}
			for _, m := range matches {
				fmt.Println(StyleValue.Render(m.Tuple.String()) + " " + StyleDim.Render(m.Source.String()))
			}
			prog.done(fmt.Sprintf("Found %d releases", len(matches)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.prerelease, "prerelease", false, "include prerelease versions")
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "only the newest released version")
	cmd.Flags().BoolVar(&opts.anyPlatform, "any-platform", false, "include releases for foreign platforms")
	cmd.Flags().BoolVar(&opts.full, "full", false, "fetch full descriptors")

	return cmd
}

// reportNotFound prints suggestions for a name with no matches. The lookup
// failure itself stays on stdout; the command still exits non-zero.
func (c *CLI) reportNotFound(cmd *cobra.Command, f *specs.Fetcher, name string) error {
	printError("No releases found for %s", StyleHighlight.Render(name))
	if alts, err := f.Suggest(cmd.Context(), name); err == nil && len(alts) > 0 {
		printInfo("Did you mean: %s", strings.Join(alts, ", "))
	}
	cmd.SilenceErrors = true
	return fmt.Errorf("no releases found for %s", name)
}

// printMismatch warns about releases hidden by platform filtering.
func printMismatch(m *specs.PlatformMismatch) {
	if m == nil {
		return
	}
	names := make([]string, len(m.Platforms))
	for i, p := range m.Platforms {
		names[i] = p.String()
	}
	printWarning("%s exists for other platforms: %s (local is %s)",
		m.Name, strings.Join(names, ", "), platform.Local())
}

// printDescriptor renders one full descriptor.
func printDescriptor(d *specs.Descriptor, src string) {
	fmt.Println(StyleTitle.Render(d.Name + " " + d.Version))
	if !d.Platform.IsAny() {
		printKeyValue("platform", d.Platform.String())
	}
	if d.Summary != "" {
		printKeyValue("summary", d.Summary)
	}
	if d.Homepage != "" {
		printKeyValue("homepage", d.Homepage)
	}
	if len(d.Licenses) > 0 {
		printKeyValue("licenses", strings.Join(d.Licenses, ", "))
	}
	for _, r := range d.Dependencies {
		printDetail("depends on %s %s", r.Name, r.Constraint)
	}
	printDetail("source %s", src)
}
