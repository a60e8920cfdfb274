package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/georgekikalishvili83/gzipper/internal/sandbox"
)

// ObjectsDir is the artifact store directory inside the cache directory.
const ObjectsDir = "cache"

// ObjectStore keeps a copy of every compressed artifact so a cached file
// whose output was deleted can be restored without recompressing.
type ObjectStore struct {
	dir string
}

// NewObjectStore returns the store under cacheDir. The directory is created
// lazily on the first Put.
func NewObjectStore(cacheDir string) *ObjectStore {
	return &ObjectStore{dir: filepath.Join(cacheDir, ObjectsDir)}
}

// Key returns the object key of fileID compressed under fingerprint.
func Key(fileID, fingerprint string) string {
	h := sha256.Sum256([]byte(fileID + fingerprint))
	return hex.EncodeToString(h[:])
}

// Has reports whether an object exists for key.
func (s *ObjectStore) Has(key string) bool {
	_, err := os.Stat(s.objectPath(key))
	return err == nil
}

// Open returns a reader for the object stored under key. found is false
// when there is none.
func (s *ObjectStore) Open(key string) (rc io.ReadCloser, found bool, err error) {
	f, err := os.Open(s.objectPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening object %s: %w", key, err)
	}
	return f, true, nil
}

// Put copies the file at src into the store under key, replacing any
// previous object.
func (s *ObjectStore) Put(key, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", src, err)
	}
	defer in.Close()

	if _, err := sandbox.WriteStream(s.dir, s.objectRel(key), 0644, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	}); err != nil {
		return fmt.Errorf("storing object %s: %w", key, err)
	}
	return nil
}

// Matches reports whether the file at path holds exactly the object stored
// under key. A missing file or object never matches.
func (s *ObjectStore) Matches(key, path string) (bool, error) {
	obj, err := os.Stat(s.objectPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking object %s: %w", key, err)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if !info.Mode().IsRegular() || info.Size() != obj.Size() {
		return false, nil
	}

	want, err := Checksum(s.objectPath(key))
	if err != nil {
		return false, err
	}
	got, err := Checksum(path)
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// Size returns the total size of stored objects in bytes.
func (s *ObjectStore) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// Path returns the store directory.
func (s *ObjectStore) Path() string {
	return s.dir
}

func (s *ObjectStore) objectPath(key string) string {
	return filepath.Join(s.dir, s.objectRel(key))
}

// objectRel shards objects by the first two key characters.
func (s *ObjectStore) objectRel(key string) string {
	if len(key) < 2 {
		return key
	}
	return filepath.Join(key[:2], key)
}
