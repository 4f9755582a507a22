package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local spec cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. The cache root
// holds one <host>%<port> subtree per source; each subtree is removed as a
// unit and reported separately.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached indexes and descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := specCacheRoot()
			if err != nil {
				return fmt.Errorf("get cache root: %w", err)
			}

			entries, err := os.ReadDir(root)
			if err != nil {
				if os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
				return err
			}
			if len(entries) == 0 {
				printInfo("Cache is empty")
				return nil
			}

			files, sources := 0, 0
			for _, e := range entries {
				path := filepath.Join(root, e.Name())
				if !e.IsDir() {
					// Stray file at the root; not part of any source tree.
					if err := os.Remove(path); err == nil {
						files++
					}
					continue
				}
				n := countCachedFiles(path)
				if err := os.RemoveAll(path); err != nil {
					return fmt.Errorf("clear %s: %w", e.Name(), err)
				}
				printDetail("%s: %d files", e.Name(), n)
				files += n
				sources++
			}

			printSuccess("Cleared %d cached files for %d sources", files, sources)
			printDetail("Root: %s", root)
			return nil
		},
	}
}

// countCachedFiles counts regular files under one source subtree.
func countCachedFiles(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			count++
		}
		return nil
	})
	return count
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the spec cache root",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := specCacheRoot()
			if err != nil {
				return fmt.Errorf("get cache root: %w", err)
			}
			fmt.Println(root)
			return nil
		},
	}
}
