package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gzipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeOptions(t, `
codecs: [gzip, brotli]
level: 7
brotliQuality: 5
brotliParamMode: text
include: [css, js]
threshold: 860
outputFileFormat: "[filename]-[hash].[ext].[compressExt]"
incremental: true
workers: 4
`)

	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"gzip", "brotli"}, opts.Codecs)
	require.NotNil(t, opts.Level)
	assert.Equal(t, 7, *opts.Level)
	require.NotNil(t, opts.BrotliQuality)
	assert.Equal(t, 5, *opts.BrotliQuality)
	assert.Equal(t, "text", opts.BrotliParamMode)
	assert.Equal(t, []string{"css", "js"}, opts.Include)
	assert.Equal(t, int64(860), opts.Threshold)
	assert.True(t, opts.Incremental)
	assert.Equal(t, 4, opts.Workers)
	// Defaults survive for keys the file does not set.
	assert.Equal(t, DefaultCacheDir, opts.CacheDir)
	assert.Equal(t, DefaultIgnoreFile, opts.IgnoreFile)
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	opts, err := Load(writeOptions(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *opts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeOptions(t, "levle: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing options")
}

func TestLoadInvalidValues(t *testing.T) {
	_, err := Load(writeOptions(t, `
level: 12
brotliParamMode: music
brotliQuality: 20
`))
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	msg := ve.Error()
	assert.Contains(t, msg, "level: 12 is out of range for gzip")
	assert.Contains(t, msg, "brotliParamMode: invalid value 'music'")
	assert.Contains(t, msg, "brotliQuality: must be at most 11")
}

func TestValidateRules(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name   string
		mutate func(o *Options)
		want   string
	}{
		{"no codecs", func(o *Options) { o.Codecs = nil }, "codecs: at least 1 value(s) required"},
		{"negative threshold", func(o *Options) { o.Threshold = -1 }, "threshold: must be at least 0"},
		{"memory level", func(o *Options) { o.MemoryLevel = intPtr(12) }, "memoryLevel: must be at most 9"},
		{"strategy", func(o *Options) { o.Strategy = intPtr(7) }, "strategy: must be at most 4"},
		{"empty include item", func(o *Options) { o.Include = []string{"css", ""} }, "value is required"},
		{"template separator", func(o *Options) { o.OutputFileFormat = "../[filename].gz" }, "must not contain path separators"},
		{"cache dir", func(o *Options) { o.CacheDir = "" }, "cacheDir: value is required"},
		{"zstd level zero", func(o *Options) { o.Codecs = []string{"zstd"}; o.Level = intPtr(0) }, "out of range for zstd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Default()
			tt.mutate(&opts)
			errs := Validate(&opts)
			require.NotEmpty(t, errs)
			assert.True(t, containsAny(errs, tt.want), "errors %v should mention %q", errs, tt.want)
		})
	}
}

func TestValidateAcceptsZstdHighLevel(t *testing.T) {
	level := 19
	opts := Default()
	opts.Codecs = []string{"zstd"}
	opts.Level = &level
	assert.Empty(t, Validate(&opts))
}

func containsAny(errs []string, want string) bool {
	for _, e := range errs {
		if strings.Contains(e, want) {
			return true
		}
	}
	return false
}
