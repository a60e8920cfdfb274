package config

import (
	"github.com/georgekikalishvili83/gzipper/internal/codec"
)

// Defaults applied by Default.
const (
	DefaultCacheDir   = ".gzipper"
	DefaultIgnoreFile = ".gzipperignore"
	DefaultWorkers    = 1
)

// Options holds every setting of a compress run. It is immutable for the
// duration of a run. Pointer fields distinguish "unset" (codec default) from
// an explicit zero.
type Options struct {
	Codecs []string `yaml:"codecs,omitempty" validate:"min=1,dive,required"`

	// gzip and deflate tuning.
	Level       *int `yaml:"level,omitempty" validate:"omitempty,min=0,max=22"`
	MemoryLevel *int `yaml:"memoryLevel,omitempty" validate:"omitempty,min=1,max=9"`
	Strategy    *int `yaml:"strategy,omitempty" validate:"omitempty,min=0,max=4"`

	// brotli tuning.
	BrotliParamMode string `yaml:"brotliParamMode,omitempty" validate:"omitempty,oneof=default text font"`
	BrotliQuality   *int   `yaml:"brotliQuality,omitempty" validate:"omitempty,min=0,max=11"`
	BrotliSizeHint  *int   `yaml:"brotliSizeHint,omitempty" validate:"omitempty,min=0"`

	// File selection.
	Include   []string `yaml:"include,omitempty" validate:"dive,required"`
	Exclude   []string `yaml:"exclude,omitempty" validate:"dive,required"`
	Threshold int64    `yaml:"threshold,omitempty" validate:"min=0"`

	// OutputFileFormat is the artifact naming template. Empty selects the
	// default template.
	OutputFileFormat string `yaml:"outputFileFormat,omitempty" validate:"filetemplate"`

	Incremental bool `yaml:"incremental,omitempty"`
	Verbose     bool `yaml:"verbose,omitempty"`

	// Workers bounds how many files are compressed concurrently.
	Workers int `yaml:"workers,omitempty" validate:"min=0"`

	// CacheDir holds the revision config and artifact store. Relative paths
	// resolve against the working directory.
	CacheDir string `yaml:"cacheDir,omitempty" validate:"required"`

	// IgnoreFile is a gitignore-style file looked up in the target root.
	IgnoreFile string `yaml:"ignoreFile,omitempty"`
}

// Default returns Options with every default applied.
func Default() Options {
	return Options{
		Codecs:     []string{string(codec.Gzip)},
		Workers:    DefaultWorkers,
		CacheDir:   DefaultCacheDir,
		IgnoreFile: DefaultIgnoreFile,
	}
}

// Kinds parses Codecs, dropping duplicates while keeping order.
func (o Options) Kinds() ([]codec.Kind, error) {
	seen := make(map[codec.Kind]bool, len(o.Codecs))
	kinds := make([]codec.Kind, 0, len(o.Codecs))
	for _, name := range o.Codecs {
		k, err := codec.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// CodecParams returns the codec tuning parameters.
func (o Options) CodecParams() codec.Params {
	return codec.Params{
		Level:          o.Level,
		MemoryLevel:    o.MemoryLevel,
		Strategy:       o.Strategy,
		BrotliMode:     o.BrotliParamMode,
		BrotliQuality:  o.BrotliQuality,
		BrotliSizeHint: o.BrotliSizeHint,
	}
}

// EffectiveWorkers returns Workers with 0 treated as 1.
func (o Options) EffectiveWorkers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
