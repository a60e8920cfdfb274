package engine

import (
	"fmt"
	"time"

	"github.com/georgekikalishvili83/gzipper/internal/codec"
)

// Actions recorded in FileAction.
const (
	ActionCompressed = "compressed"
	ActionCached     = "cached"
	ActionRestored   = "restored" // cached, output copied back from the artifact store
)

// FileAction describes what happened to one source file under one codec.
type FileAction struct {
	Source      string
	Output      string
	Codec       codec.Kind
	Action      string
	BytesBefore int64
	BytesAfter  int64
	Elapsed     time.Duration
}

// Result holds the outcome of a compress run.
type Result struct {
	// Files is the number of eligible files processed.
	Files      int
	Compressed []FileAction
	// Cached holds files served from the revision cache, including restored
	// ones.
	Cached      []FileAction
	BytesBefore int64
	BytesAfter  int64
	Elapsed     time.Duration
	// NoFiles is set when the target held no eligible files.
	NoFiles bool
}

// CompressionIOError reports an I/O or codec failure while producing an
// artifact. It aborts the whole run.
type CompressionIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *CompressionIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CompressionIOError) Unwrap() error {
	return e.Err
}
