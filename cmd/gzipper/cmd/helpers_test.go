package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgekikalishvili83/gzipper/internal/config"
)

func parseCompressFlags(t *testing.T, args ...string) (*pflag.FlagSet, *compressFlags) {
	t.Helper()
	fs := pflag.NewFlagSet("compress", pflag.ContinueOnError)
	f := &compressFlags{}
	bindCompressFlags(fs, f)
	require.NoError(t, fs.Parse(args))
	return fs, f
}

func TestOptionsFromFlagsDefaults(t *testing.T) {
	fs, f := parseCompressFlags(t)
	opts, err := optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), opts)
}

func TestOptionsFromFlags(t *testing.T) {
	fs, f := parseCompressFlags(t,
		"--brotli", "--gzip",
		"--level", "7",
		"--brotli-quality", "4",
		"--include", "css,js",
		"--threshold", "860",
		"--incremental",
		"--workers", "3",
		"--output-file-format", "[filename].[compressExt]",
	)

	opts, err := optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"gzip", "brotli"}, opts.Codecs)
	require.NotNil(t, opts.Level)
	assert.Equal(t, 7, *opts.Level)
	require.NotNil(t, opts.BrotliQuality)
	assert.Equal(t, 4, *opts.BrotliQuality)
	assert.Nil(t, opts.MemoryLevel, "unset flags stay unset")
	assert.Equal(t, []string{"css", "js"}, opts.Include)
	assert.Equal(t, int64(860), opts.Threshold)
	assert.True(t, opts.Incremental)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, "[filename].[compressExt]", opts.OutputFileFormat)
}

func TestOptionsFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gzipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codecs: [zstd]\nlevel: 3\nthreshold: 100\n"), 0644))

	fs, f := parseCompressFlags(t, "--config", path, "--level", "5")
	opts, err := optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"zstd"}, opts.Codecs)
	assert.Equal(t, 5, *opts.Level)
	assert.Equal(t, int64(100), opts.Threshold)
}

func TestOptionsFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gzipper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: -1\n"), 0644))

	fs, f := parseCompressFlags(t, "--config", path)
	_, err := optionsFromFlags(fs, f)
	var ve *config.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestEnvOverridesFlags(t *testing.T) {
	t.Setenv("GZIPPER_LEVEL", "2")
	t.Setenv("GZIPPER_DEFLATE", "true")

	fs, f := parseCompressFlags(t, "--level", "5", "--gzip")
	opts, err := optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, 2, *opts.Level)
	assert.Equal(t, []string{"gzip", "deflate"}, opts.Codecs)
}

func TestIgnoreFileFlagAndEnv(t *testing.T) {
	fs, f := parseCompressFlags(t, "--ignore-file", ".distignore")
	opts, err := optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, ".distignore", opts.IgnoreFile)

	t.Setenv("GZIPPER_IGNORE_FILE", ".envignore")
	fs, f = parseCompressFlags(t, "--ignore-file", ".distignore")
	opts, err = optionsFromFlags(fs, f)
	require.NoError(t, err)
	assert.Equal(t, ".envignore", opts.IgnoreFile)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	errOut = &buf
	t.Cleanup(func() { errOut = os.Stderr })

	engineErr := errors.New("compress app.js: disk full")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error is printed", errors.New("bad flag"), "error: bad flag\n"},
		{"logged error is not printed", &loggedError{err: engineErr}, ""},
		{"wrapped logged error is not printed", fmt.Errorf("run: %w", &loggedError{err: engineErr}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			reportError(tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{9, "9 B"},
		{512, "512 B"},
		{1500, "1.5 kB"},
		{2000000, "2.0 MB"},
	}

	for _, tt := range tests {
		got := humanSize(tt.bytes)
		if got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
