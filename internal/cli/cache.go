package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/cache"
	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/gitctx"
)

var flagExpiredOnly bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

// openCacheForCommand opens the configured cache without creating it.
// Outside a repository a relative cache directory resolves against the
// working directory.
func openCacheForCommand(cmd *cobra.Command) (*cache.Cache, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	root, err := gitctx.RepoRoot(cmd.Context(), flagRepo)
	if err != nil {
		root = ""
	}
	opts := cacheOptions(cfg, root)
	opts.Enabled = true
	opts.IgnoreFile = ""
	opts.NoCreate = true
	return cache.New(opts)
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCacheForCommand(cmd)
		if err != nil {
			fail(fmt.Errorf("opening cache: %w", err))
			return nil
		}
		defer c.Close()

		var n int
		if flagExpiredOnly {
			n, err = c.ClearExpired()
		} else {
			n, err = c.ClearAll()
		}
		if err != nil {
			fail(fmt.Errorf("clearing cache: %w", err))
			return nil
		}
		if flagExpiredOnly {
			fmt.Fprintf(os.Stdout, "Removed %d expired cache entries.\n", n)
		} else {
			fmt.Fprintf(os.Stdout, "Cache cleared (%d entries removed).\n", n)
		}
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCacheForCommand(cmd)
		if err != nil {
			fail(fmt.Errorf("opening cache: %w", err))
			return nil
		}
		defer c.Close()

		stats, err := c.Stats()
		if err != nil {
			fail(fmt.Errorf("reading cache stats: %w", err))
			return nil
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	for _, cmd := range []*cobra.Command{cacheClearCmd, cacheShowCmd} {
		cmd.Flags().StringVar(&flagRepo, "repo", ".", "Path to the git repository")
		cmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory")
	}
	cacheClearCmd.Flags().BoolVar(&flagExpiredOnly, "expired", false, "Only remove entries older than the TTL")
}
