package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/georgekikalishvili83/gzipper/internal/sandbox"
)

// ConfigVersion is written to every revision config.
const ConfigVersion = "1"

// ConfigFile is the revision config name inside the cache directory.
const ConfigFile = ".gzipperconfig"

// RevisionConfig is the persisted cache state.
type RevisionConfig struct {
	Version     string      `json:"version"`
	Incremental Incremental `json:"incremental"`
}

// Incremental groups revision records by file id.
type Incremental struct {
	Files map[string]*FileRecord `json:"files"`
}

// FileRecord holds every revision of one file, at most one per options
// fingerprint.
type FileRecord struct {
	Revisions []Revision `json:"revisions"`
}

// Revision is one past compression of a file under one options fingerprint.
type Revision struct {
	Date         time.Time `json:"date"`
	LastChecksum string    `json:"lastChecksum"`
	FileID       string    `json:"fileId"`
	Options      string    `json:"options"`
}

// NewRevisionConfig returns an empty config.
func NewRevisionConfig() *RevisionConfig {
	return &RevisionConfig{
		Version:     ConfigVersion,
		Incremental: Incremental{Files: make(map[string]*FileRecord)},
	}
}

// CorruptionError reports a revision config that exists but cannot be
// parsed.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt revision config %s: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// LoadConfig reads a revision config. A missing file yields an empty config.
// An unparseable file yields an empty config together with a
// *CorruptionError.
func LoadConfig(path string) (*RevisionConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRevisionConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading revision config %s: %w", path, err)
	}

	var rc RevisionConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return NewRevisionConfig(), &CorruptionError{Path: path, Err: err}
	}
	if rc.Version == "" {
		rc.Version = ConfigVersion
	}
	if rc.Incremental.Files == nil {
		rc.Incremental.Files = make(map[string]*FileRecord)
	}
	for id, rec := range rc.Incremental.Files {
		if rec == nil {
			delete(rc.Incremental.Files, id)
		}
	}
	return &rc, nil
}

// SaveConfig writes rc atomically using a temp file and rename.
func SaveConfig(path string, rc *RevisionConfig) error {
	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling revision config: %w", err)
	}
	data = append(data, '\n')

	if _, err := sandbox.WriteStream(filepath.Dir(path), filepath.Base(path), 0644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("writing revision config %s: %w", path, err)
	}
	return nil
}
