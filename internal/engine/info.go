package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/georgekikalishvili83/gzipper/internal/cache"
	"github.com/georgekikalishvili83/gzipper/internal/config"
)

// CacheInfoResult describes the revision cache for the cache info command.
type CacheInfoResult struct {
	Dir        string
	ConfigPath string
	Exists     bool
	Corrupt    bool
	Version    string
	Files      int
	Revisions  int
	StoreDir   string
	StoreSize  int64
}

// CacheInfo gathers revision cache statistics. It never modifies the cache.
func CacheInfo(opts config.Options) (*CacheInfoResult, error) {
	dir, err := filepath.Abs(opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache dir %s: %w", opts.CacheDir, err)
	}

	r := &CacheInfoResult{Dir: dir}

	c, err := cache.Open(dir)
	var corrupt *cache.CorruptionError
	switch {
	case errors.As(err, &corrupt):
		r.Corrupt = true
	case err != nil:
		return nil, err
	}

	r.ConfigPath = c.Path()
	if _, err := os.Stat(r.ConfigPath); err == nil {
		r.Exists = true
	}
	r.Version = c.Version()
	r.Files, r.Revisions = c.Stats()

	store := cache.NewObjectStore(dir)
	r.StoreDir = store.Path()
	size, err := store.Size()
	if err != nil {
		return nil, fmt.Errorf("measuring artifact store: %w", err)
	}
	r.StoreSize = size

	return r, nil
}
