package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
	"github.com/georgekikalishvili83/gzipper/internal/config"
)

// compressFlags holds the raw values of the compress command flags.
type compressFlags struct {
	optionsPath string

	verbose     bool
	incremental bool
	include     []string
	exclude     []string
	threshold   int64
	ignoreFile  string

	level       int
	memoryLevel int
	strategy    int

	codecs map[codec.Kind]*bool

	brotliParamMode string
	brotliQuality   int
	brotliSizeHint  int

	outputFileFormat string
	workers          int
	cacheDir         string
}

func bindCompressFlags(fs *pflag.FlagSet, f *compressFlags) {
	fs.StringVar(&f.optionsPath, "config", "", "YAML options file")

	fs.BoolVar(&f.verbose, "verbose", false, "log every file and a size summary")
	fs.BoolVar(&f.incremental, "incremental", false, "skip files unchanged since the last run")
	fs.StringSliceVar(&f.include, "include", nil, "only compress these extensions (comma separated)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "never compress these extensions (comma separated)")
	fs.Int64Var(&f.threshold, "threshold", 0, "minimum file size in bytes")
	fs.StringVar(&f.ignoreFile, "ignore-file", config.DefaultIgnoreFile, "gitignore-style file read from the target root")

	fs.IntVar(&f.level, "level", 0, "compression level (gzip, deflate, zstd, lz4)")
	fs.IntVar(&f.memoryLevel, "memory-level", 0, "memory level 1-9 (gzip, deflate)")
	fs.IntVar(&f.strategy, "strategy", 0, "strategy 0-4 (gzip, deflate)")

	f.codecs = make(map[codec.Kind]*bool)
	for _, k := range codec.Kinds() {
		f.codecs[k] = fs.Bool(string(k), false, fmt.Sprintf("compress with %s (.%s)", k, codec.Ext(k)))
	}

	fs.StringVar(&f.brotliParamMode, "brotli-param-mode", "", "brotli mode: default, text or font")
	fs.IntVar(&f.brotliQuality, "brotli-quality", 0, "brotli quality 0-11")
	fs.IntVar(&f.brotliSizeHint, "brotli-size-hint", 0, "expected input size for brotli window tuning")

	fs.StringVar(&f.outputFileFormat, "output-file-format", "", "artifact name template, e.g. [filename]-[hash].[ext].[compressExt]")
	fs.IntVar(&f.workers, "workers", config.DefaultWorkers, "files compressed concurrently")
	fs.StringVar(&f.cacheDir, "cache-dir", config.DefaultCacheDir, "revision cache directory")
}

// optionsFromFlags layers defaults, the options file, changed flags and the
// environment, in that order.
func optionsFromFlags(fs *pflag.FlagSet, f *compressFlags) (config.Options, error) {
	opts := config.Default()
	if f.optionsPath != "" {
		loaded, err := config.Load(f.optionsPath)
		if err != nil {
			return opts, err
		}
		opts = *loaded
	}

	if fs.Changed("verbose") {
		opts.Verbose = f.verbose
	}
	if fs.Changed("incremental") {
		opts.Incremental = f.incremental
	}
	if fs.Changed("include") {
		opts.Include = f.include
	}
	if fs.Changed("exclude") {
		opts.Exclude = f.exclude
	}
	if fs.Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if fs.Changed("ignore-file") {
		opts.IgnoreFile = f.ignoreFile
	}
	if fs.Changed("level") {
		opts.Level = intPtr(f.level)
	}
	if fs.Changed("memory-level") {
		opts.MemoryLevel = intPtr(f.memoryLevel)
	}
	if fs.Changed("strategy") {
		opts.Strategy = intPtr(f.strategy)
	}
	if fs.Changed("brotli-param-mode") {
		opts.BrotliParamMode = f.brotliParamMode
	}
	if fs.Changed("brotli-quality") {
		opts.BrotliQuality = intPtr(f.brotliQuality)
	}
	if fs.Changed("brotli-size-hint") {
		opts.BrotliSizeHint = intPtr(f.brotliSizeHint)
	}
	if fs.Changed("output-file-format") {
		opts.OutputFileFormat = f.outputFileFormat
	}
	if fs.Changed("workers") {
		opts.Workers = f.workers
	}
	if fs.Changed("cache-dir") {
		opts.CacheDir = f.cacheDir
	}

	// Codec flags replace the configured list when any is given.
	var selected []string
	for _, k := range codec.Kinds() {
		if on := f.codecs[k]; on != nil && *on {
			selected = append(selected, string(k))
		}
	}
	if len(selected) > 0 {
		opts.Codecs = selected
	}

	if err := config.ApplyEnv(&opts, config.NewEnvViper()); err != nil {
		return opts, err
	}
	return opts, nil
}

func intPtr(v int) *int {
	return &v
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verboseOutput && !quiet {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errOut receives errorf output.
var errOut io.Writer = os.Stderr

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
}
