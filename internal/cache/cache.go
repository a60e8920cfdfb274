// Package cache persists per-file compression revisions so unchanged files
// are not recompressed across runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache is the in-memory view of a revision config. It is safe for
// concurrent use.
type Cache struct {
	mu   sync.Mutex
	dir  string
	path string
	cfg  *RevisionConfig
}

// Open loads the revision config from dir. The returned Cache is usable
// even when err is a *CorruptionError; it then starts empty.
func Open(dir string) (*Cache, error) {
	path := filepath.Join(dir, ConfigFile)
	cfg, err := LoadConfig(path)
	if cfg == nil {
		return nil, err
	}
	return &Cache{dir: dir, path: path, cfg: cfg}, err
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the revision config path.
func (c *Cache) Path() string {
	return c.path
}

// Lookup reports a hit when fileID has a revision under fingerprint whose
// checksum equals checksum.
func (c *Cache) Lookup(fileID, checksum, fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.cfg.Incremental.Files[fileID]
	if rec == nil {
		return false
	}
	for _, rev := range rec.Revisions {
		if rev.Options == fingerprint {
			return rev.LastChecksum == checksum
		}
	}
	return false
}

// Record inserts or replaces the revision of fileID under fingerprint.
// Revisions under other fingerprints are kept.
func (c *Cache) Record(fileID, checksum, fingerprint string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rev := Revision{
		Date:         now.UTC(),
		LastChecksum: checksum,
		FileID:       fileID,
		Options:      fingerprint,
	}

	rec := c.cfg.Incremental.Files[fileID]
	if rec == nil {
		rec = &FileRecord{}
		c.cfg.Incremental.Files[fileID] = rec
	}
	for i := range rec.Revisions {
		if rec.Revisions[i].Options == fingerprint {
			rec.Revisions[i] = rev
			return
		}
	}
	rec.Revisions = append(rec.Revisions, rev)
}

// Revisions returns a copy of the revisions recorded for fileID.
func (c *Cache) Revisions(fileID string) []Revision {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.cfg.Incremental.Files[fileID]
	if rec == nil {
		return nil
	}
	out := make([]Revision, len(rec.Revisions))
	copy(out, rec.Revisions)
	return out
}

// Stats returns the number of tracked files and revisions.
func (c *Cache) Stats() (files, revisions int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range c.cfg.Incremental.Files {
		files++
		revisions += len(rec.Revisions)
	}
	return files, revisions
}

// Version returns the config version.
func (c *Cache) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Version
}

// Flush writes the revision config to disk atomically.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := SaveConfig(c.path, c.cfg); err != nil {
		return fmt.Errorf("flushing revision cache: %w", err)
	}
	return nil
}

// FileID derives the stable cache slot of the file at absPath. It depends
// on the path only, never on content.
func FileID(absPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.Clean(absPath))).String()
}

// Checksum streams the file at path through SHA-256 and returns the hex
// digest.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
