// Package cli implements the specdex command-line interface.
//
// This package provides commands for querying package spec indexes across
// configured sources, fetching individual descriptors, managing the local
// spec cache, and serving the query surface over HTTP. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - search: Find releases matching a name and version constraint
//   - list: List available tuples per source
//   - suggest: Print name suggestions for a misspelled package
//   - fetch: Fetch and print one full descriptor
//   - cache: Manage the local spec cache
//   - serve: Expose search/suggest/list as a local HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the engine's progress is visible
// without global state.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/specdex/specdex/pkg/buildinfo"
	"github.com/specdex/specdex/pkg/specs"
)

// appName is the application name used for directories and display.
const appName = "specdex"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose bool
	sources []string
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Specdex syncs and queries package spec indexes",
		Long:         `Specdex retrieves, caches, and queries indexes of package descriptors from one or more remote sources, with a self-healing local cache.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringArrayVarP(&c.sources, "source", "s", nil, "source URL (repeatable, overrides config)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "never write the local spec cache")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newFetcher builds the engine from the effective source list and the
// standard cache location.
func (c *CLI) newFetcher() (*specs.Fetcher, error) {
	srcs, err := c.loadSources()
	if err != nil {
		return nil, err
	}

	opts := []specs.Option{}
	if root, err := specCacheRoot(); err == nil {
		opts = append(opts, specs.WithCacheRoot(root))
	}
	if c.noCache {
		opts = append(opts, specs.WithUpdate(false))
	}
	return specs.NewFetcher(srcs, opts...)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/specdex/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// specCacheRoot returns the root of the on-disk spec cache, the directory
// the engine fills with one <host>%<port> subtree per source.
func specCacheRoot() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "specs"), nil
}

// configDir returns the config directory using XDG standard (~/.config/specdex/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
