// Package matcher decides which discovered files are eligible for
// compression.
package matcher

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
	"github.com/georgekikalishvili83/gzipper/internal/config"
)

// Matcher is a pure predicate over file metadata supplied by the walker.
type Matcher struct {
	include    map[string]bool
	exclude    map[string]bool
	artifacts  map[string]bool
	threshold  int64
	ignoreFile string
	ignored    *ignore.GitIgnore
	skipDirs   map[string]bool
}

// New builds a Matcher for opts. kinds are the active codecs; their artifact
// extensions are never eligible.
func New(opts config.Options, kinds []codec.Kind) (*Matcher, error) {
	m := &Matcher{
		include:    extSet(opts.Include),
		exclude:    extSet(opts.Exclude),
		artifacts:  make(map[string]bool, len(kinds)),
		threshold:  opts.Threshold,
		ignoreFile: opts.IgnoreFile,
		skipDirs:   make(map[string]bool),
	}
	for _, k := range kinds {
		m.artifacts[codec.Ext(k)] = true
	}

	if opts.CacheDir != "" {
		abs, err := filepath.Abs(opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("resolving cache dir %s: %w", opts.CacheDir, err)
		}
		m.skipDirs[abs] = true
	}

	return m, nil
}

// LoadIgnore compiles the ignore file found in dir, if any. A missing file
// is not an error.
func (m *Matcher) LoadIgnore(dir string) error {
	if m.ignoreFile == "" {
		return nil
	}
	p := filepath.Join(dir, m.ignoreFile)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking ignore file %s: %w", p, err)
	}
	ig, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return fmt.Errorf("reading ignore file %s: %w", p, err)
	}
	m.ignored = ig
	return nil
}

// Eligible reports whether the file at rel (slash separated, relative to the
// walk root) with the given size should be compressed.
func (m *Matcher) Eligible(rel string, size int64) bool {
	if size < m.threshold {
		return false
	}
	if m.ignoreFile != "" && rel == m.ignoreFile {
		return false
	}
	if m.ignored != nil && m.ignored.MatchesPath(rel) {
		return false
	}

	ext := Ext(rel)
	if m.artifacts[ext] {
		return false
	}
	if len(m.include) > 0 {
		return m.include[ext]
	}
	if len(m.exclude) > 0 {
		return !m.exclude[ext]
	}
	return true
}

// SkipDir reports whether the directory at abs (rel relative to the walk
// root) must not be descended into.
func (m *Matcher) SkipDir(abs, rel string) bool {
	if m.skipDirs[filepath.Clean(abs)] {
		return true
	}
	return m.ignored != nil && rel != "" && m.ignored.MatchesPath(rel+"/")
}

// Ext returns the lowercase text after the last dot of the final path
// segment, or "" when there is none.
func Ext(p string) string {
	base := path.Base(filepath.ToSlash(p))
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

func extSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = true
		}
	}
	return set
}
