package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverridesOptions(t *testing.T) {
	t.Setenv("GZIPPER_INCREMENTAL", "true")
	t.Setenv("GZIPPER_LEVEL", "3")
	t.Setenv("GZIPPER_MEMORY_LEVEL", "8")
	t.Setenv("GZIPPER_INCLUDE", "js, css,,html")
	t.Setenv("GZIPPER_THRESHOLD", "512")
	t.Setenv("GZIPPER_OUTPUT_FILE_FORMAT", "[filename].[compressExt]")
	t.Setenv("GZIPPER_BROTLI_PARAM_MODE", "text")
	t.Setenv("GZIPPER_IGNORE_FILE", ".assetsignore")

	o := Default()
	o.Level = nil
	require.NoError(t, ApplyEnv(&o, NewEnvViper()))

	assert.True(t, o.Incremental)
	require.NotNil(t, o.Level)
	assert.Equal(t, 3, *o.Level)
	require.NotNil(t, o.MemoryLevel)
	assert.Equal(t, 8, *o.MemoryLevel)
	assert.Equal(t, []string{"js", "css", "html"}, o.Include)
	assert.Equal(t, int64(512), o.Threshold)
	assert.Equal(t, "[filename].[compressExt]", o.OutputFileFormat)
	assert.Equal(t, "text", o.BrotliParamMode)
	assert.Equal(t, ".assetsignore", o.IgnoreFile)
}

func TestApplyEnvLeavesUnsetOptions(t *testing.T) {
	level := 6
	o := Default()
	o.Level = &level
	o.Exclude = []string{"map"}

	require.NoError(t, ApplyEnv(&o, NewEnvViper()))

	assert.Equal(t, 6, *o.Level)
	assert.Equal(t, []string{"map"}, o.Exclude)
	assert.Equal(t, []string{"gzip"}, o.Codecs)
}

func TestApplyEnvCodecToggles(t *testing.T) {
	t.Setenv("GZIPPER_BROTLI", "true")
	t.Setenv("GZIPPER_GZIP", "false")
	t.Setenv("GZIPPER_ZSTD", "1")

	o := Default()
	require.NoError(t, ApplyEnv(&o, NewEnvViper()))
	assert.Equal(t, []string{"brotli", "zstd"}, o.Codecs)
}

func TestApplyEnvDisablingEveryCodecFallsBackToGzip(t *testing.T) {
	t.Setenv("GZIPPER_GZIP", "false")

	o := Default()
	require.NoError(t, ApplyEnv(&o, NewEnvViper()))
	assert.Equal(t, []string{"gzip"}, o.Codecs)
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("GZIPPER_WORKERS", "many")

	o := Default()
	err := ApplyEnv(&o, NewEnvViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GZIPPER_WORKERS")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , ,"))
	assert.Equal(t, []string{"a", "b"}, SplitList("a, b"))
}
