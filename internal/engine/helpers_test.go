package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/georgekikalishvili83/gzipper/internal/config"
)

// lockedBuffer collects log output from concurrent workers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// events decodes every JSON log line.
func (b *lockedBuffer) events(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), sc.Text())
		out = append(out, entry)
	}
	return out
}

// count returns how many log lines carry the given event name.
func (b *lockedBuffer) count(t *testing.T, event string) int {
	n := 0
	for _, e := range b.events(t) {
		if e["event"] == event {
			n++
		}
	}
	return n
}

func testOptions(t *testing.T) config.Options {
	t.Helper()
	opts := config.Default()
	opts.CacheDir = filepath.Join(t.TempDir(), ".gzipper")
	return opts
}

func newTestEngine(t *testing.T, opts config.Options) (*CompressEngine, *lockedBuffer) {
	t.Helper()
	buf := &lockedBuffer{}
	e, err := New(opts, zerolog.New(buf))
	require.NoError(t, err)
	return e, buf
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func gunzipFile(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func outputs(actions []FileAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = filepath.Base(a.Output)
	}
	return out
}
