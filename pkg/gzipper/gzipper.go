// Package gzipper provides the public Go library API for gzipper.
//
// gzipper compresses directory trees with one or more codecs and, in
// incremental mode, skips files whose content and codec settings are
// unchanged since the previous run.
//
// # Basic Usage
//
//	opts := gzipper.DefaultOptions()
//	opts.Codecs = []string{"gzip", "brotli"}
//	opts.Incremental = true
//
//	result, err := gzipper.Compress(ctx, "./dist", "", opts, zerolog.Nop())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d compressed, %d cached\n", len(result.Compressed), len(result.Cached))
package gzipper

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/georgekikalishvili83/gzipper/internal/config"
	"github.com/georgekikalishvili83/gzipper/internal/engine"
)

// Compressor runs compress jobs.
type Compressor interface {
	Compress(ctx context.Context, target, destination string) (*Result, error)
}

// Client is the main entry point for the gzipper library.
type Client struct {
	engine *engine.CompressEngine
}

// New validates opts and returns a Client logging to log.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	eng, err := engine.New(opts, log)
	if err != nil {
		return nil, err
	}
	return &Client{engine: eng}, nil
}

// Compress compresses target. An empty destination writes artifacts next
// to their sources.
func (c *Client) Compress(ctx context.Context, target, destination string) (*Result, error) {
	return c.engine.Run(ctx, target, destination)
}

// CacheInfo reports revision cache statistics for the cache directory in
// the client's options.
func (c *Client) CacheInfo() (*CacheInfoResult, error) {
	return engine.CacheInfo(c.engine.Options)
}

// PurgeCache removes the revision cache.
func (c *Client) PurgeCache(opts PurgeOptions) (*PurgeResult, error) {
	return engine.PurgeCache(c.engine.Options, opts)
}

// Compress is a one-shot helper around New and Client.Compress.
func Compress(ctx context.Context, target, destination string, opts Options, log zerolog.Logger) (*Result, error) {
	c, err := New(opts, log)
	if err != nil {
		return nil, err
	}
	return c.Compress(ctx, target, destination)
}

// DefaultOptions returns options with every default applied.
func DefaultOptions() Options {
	return config.Default()
}

// LoadOptions reads and validates a YAML options file.
func LoadOptions(path string) (*Options, error) {
	return config.Load(path)
}

var _ Compressor = (*Client)(nil)
