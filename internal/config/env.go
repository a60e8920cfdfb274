package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
)

// EnvPrefix prefixes every option read from the environment, e.g.
// GZIPPER_MEMORY_LEVEL for "memory-level".
const EnvPrefix = "GZIPPER"

type envBinding struct {
	key   string
	apply func(o *Options, val any) error
}

var envBindings = []envBinding{
	{"incremental", boolSetter(func(o *Options, b bool) { o.Incremental = b })},
	{"verbose", boolSetter(func(o *Options, b bool) { o.Verbose = b })},
	{"include", listSetter(func(o *Options, l []string) { o.Include = l })},
	{"exclude", listSetter(func(o *Options, l []string) { o.Exclude = l })},
	{"threshold", func(o *Options, val any) error {
		n, err := cast.ToInt64E(val)
		if err != nil {
			return err
		}
		o.Threshold = n
		return nil
	}},
	{"ignore-file", stringSetter(func(o *Options, s string) { o.IgnoreFile = s })},
	{"level", intPtrSetter(func(o *Options, n *int) { o.Level = n })},
	{"memory-level", intPtrSetter(func(o *Options, n *int) { o.MemoryLevel = n })},
	{"strategy", intPtrSetter(func(o *Options, n *int) { o.Strategy = n })},
	{"brotli-param-mode", stringSetter(func(o *Options, s string) { o.BrotliParamMode = s })},
	{"brotli-quality", intPtrSetter(func(o *Options, n *int) { o.BrotliQuality = n })},
	{"brotli-size-hint", intPtrSetter(func(o *Options, n *int) { o.BrotliSizeHint = n })},
	{"output-file-format", stringSetter(func(o *Options, s string) { o.OutputFileFormat = s })},
	{"workers", func(o *Options, val any) error {
		n, err := cast.ToIntE(val)
		if err != nil {
			return err
		}
		o.Workers = n
		return nil
	}},
	{"cache-dir", stringSetter(func(o *Options, s string) { o.CacheDir = s })},
}

// NewEnvViper returns a viper instance bound to the GZIPPER_* variables of
// every option and codec toggle.
func NewEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, b := range envBindings {
		_ = v.BindEnv(b.key)
	}
	for _, k := range codec.Kinds() {
		_ = v.BindEnv(string(k))
	}
	return v
}

// ApplyEnv overlays the environment onto o. Environment values take
// precedence over flags and the options file.
func ApplyEnv(o *Options, v *viper.Viper) error {
	for _, b := range envBindings {
		if !v.IsSet(b.key) {
			continue
		}
		if err := b.apply(o, v.Get(b.key)); err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, envName(b.key), err)
		}
	}
	return applyCodecToggles(o, v)
}

// applyCodecToggles adds codecs whose variable is true and removes those set
// to false. Removing every codec falls back to gzip.
func applyCodecToggles(o *Options, v *viper.Viper) error {
	enabled := make(map[string]bool)
	touched := false
	for _, name := range o.Codecs {
		enabled[strings.ToLower(name)] = true
	}
	for _, k := range codec.Kinds() {
		if !v.IsSet(string(k)) {
			continue
		}
		on, err := cast.ToBoolE(v.Get(string(k)))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, envName(string(k)), err)
		}
		enabled[string(k)] = on
		touched = true
	}
	if !touched {
		return nil
	}

	codecs := make([]string, 0, len(enabled))
	for _, k := range codec.Kinds() {
		if enabled[string(k)] {
			codecs = append(codecs, string(k))
		}
	}
	if len(codecs) == 0 {
		codecs = []string{string(codec.Gzip)}
	}
	o.Codecs = codecs
	return nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolSetter(set func(*Options, bool)) func(*Options, any) error {
	return func(o *Options, val any) error {
		b, err := cast.ToBoolE(val)
		if err != nil {
			return err
		}
		set(o, b)
		return nil
	}
}

func intPtrSetter(set func(*Options, *int)) func(*Options, any) error {
	return func(o *Options, val any) error {
		n, err := cast.ToIntE(val)
		if err != nil {
			return err
		}
		set(o, &n)
		return nil
	}
}

func stringSetter(set func(*Options, string)) func(*Options, any) error {
	return func(o *Options, val any) error {
		set(o, cast.ToString(val))
		return nil
	}
}

func listSetter(set func(*Options, []string)) func(*Options, any) error {
	return func(o *Options, val any) error {
		set(o, SplitList(cast.ToString(val)))
		return nil
	}
}
