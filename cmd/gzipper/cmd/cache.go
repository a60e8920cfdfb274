package cmd

import (
	"github.com/spf13/cobra"

	"github.com/georgekikalishvili83/gzipper/internal/config"
	"github.com/georgekikalishvili83/gzipper/internal/engine"
)

var (
	cacheDirFlag string
	purgeDryRun  bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the revision cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show revision cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cacheOptions(cmd)
		if err != nil {
			return err
		}

		r, err := engine.CacheInfo(opts)
		if err != nil {
			return err
		}

		info("gzipper %s", version)
		info("")
		info("Cache directory:  %s", r.Dir)
		if !r.Exists {
			info("Revision config:  %s (not created yet)", r.ConfigPath)
		} else if r.Corrupt {
			info("Revision config:  %s (corrupt, next run starts empty)", r.ConfigPath)
		} else {
			info("Revision config:  %s (version %s)", r.ConfigPath, r.Version)
		}
		info("Tracked files:    %d", r.Files)
		info("Revisions:        %d", r.Revisions)
		info("Artifact store:   %s (%s)", r.StoreDir, humanSize(r.StoreSize))
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the revision config and artifact store",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cacheOptions(cmd)
		if err != nil {
			return err
		}

		result, err := engine.PurgeCache(opts, engine.PurgeOptions{DryRun: purgeDryRun})
		if err != nil {
			return err
		}

		if purgeDryRun {
			info("Dry run, nothing removed.")
		}
		for _, path := range result.Removed {
			info("  removed  %s", path)
		}
		if len(result.Removed) == 0 {
			info("Cache is already empty.")
		}
		return nil
	},
}

// cacheOptions resolves the cache directory from the flag and environment.
func cacheOptions(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()
	if cmd.Flags().Changed("cache-dir") {
		opts.CacheDir = cacheDirFlag
	}
	if err := config.ApplyEnv(&opts, config.NewEnvViper()); err != nil {
		return opts, err
	}
	return opts, nil
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", config.DefaultCacheDir, "revision cache directory")
	cachePurgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false, "show what would be removed")

	cacheCmd.AddCommand(cacheInfoCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
