package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/georgekikalishvili83/gzipper/internal/cache"
	"github.com/georgekikalishvili83/gzipper/internal/config"
	"github.com/georgekikalishvili83/gzipper/internal/sandbox"
)

// PurgeOptions configures a cache purge.
type PurgeOptions struct {
	DryRun bool
}

// PurgeResult holds the outcome of a cache purge.
type PurgeResult struct {
	Removed []string
}

// PurgeCache removes the revision config and the artifact store. Only
// entries owned by the cache are touched, so a cache dir shared with other
// files is safe to purge.
func PurgeCache(opts config.Options, popts PurgeOptions) (*PurgeResult, error) {
	dir, err := filepath.Abs(opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache dir %s: %w", opts.CacheDir, err)
	}

	result := &PurgeResult{}
	for _, name := range []string{cache.ConfigFile, cache.ObjectsDir} {
		path := filepath.Join(dir, name)
		if _, err := os.Lstat(path); os.IsNotExist(err) {
			continue
		}
		if !popts.DryRun {
			if err := sandbox.RemoveAll(dir, name); err != nil {
				return result, fmt.Errorf("removing %s: %w", path, err)
			}
		}
		result.Removed = append(result.Removed, path)
	}

	if !popts.DryRun {
		// Drop the directory once it is empty; anything else keeps it.
		_ = os.Remove(dir)
	}

	return result, nil
}
