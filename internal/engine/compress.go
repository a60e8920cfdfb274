// Package engine runs compress jobs over a target tree.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/georgekikalishvili83/gzipper/internal/cache"
	"github.com/georgekikalishvili83/gzipper/internal/codec"
	"github.com/georgekikalishvili83/gzipper/internal/config"
	"github.com/georgekikalishvili83/gzipper/internal/matcher"
	"github.com/georgekikalishvili83/gzipper/internal/output"
	"github.com/georgekikalishvili83/gzipper/internal/sandbox"
	"github.com/georgekikalishvili83/gzipper/internal/walker"
)

// Log event names.
const (
	EventNoFiles      = "no_files"
	EventCompressed   = "compressed"
	EventCached       = "cached"
	EventSummary      = "summary"
	EventError        = "error"
	EventCacheCorrupt = "cache_corrupt"
)

// CompressEngine orchestrates a compress run.
type CompressEngine struct {
	Options  config.Options
	Codecs   []codec.Codec
	Resolver *output.Resolver
	Logger   zerolog.Logger
	Now      func() time.Time
}

// New validates opts and builds its codecs.
func New(opts config.Options, log zerolog.Logger) (*CompressEngine, error) {
	kinds, err := opts.Kinds()
	if err != nil {
		log.Error().Str("event", EventError).Err(err).Msg("invalid codec")
		return nil, err
	}
	if errs := config.Validate(&opts); len(errs) > 0 {
		err := &config.ValidationError{Errors: errs}
		log.Error().Str("event", EventError).Err(err).Msg("invalid options")
		return nil, err
	}

	params := opts.CodecParams()
	codecs := make([]codec.Codec, 0, len(kinds))
	for _, k := range kinds {
		c, err := codec.New(k, params)
		if err != nil {
			log.Error().Str("event", EventError).Err(err).Msg("invalid codec")
			return nil, err
		}
		codecs = append(codecs, c)
	}

	return &CompressEngine{
		Options:  opts,
		Codecs:   codecs,
		Resolver: output.NewResolver(opts.OutputFileFormat),
		Logger:   log,
		Now:      time.Now,
	}, nil
}

// run holds per-invocation state shared by file workers.
type run struct {
	dest  string
	cache *cache.Cache
	store *cache.ObjectStore
}

// Run compresses every eligible file under target. Artifacts go next to
// their source, or mirror the tree under destination when it is set.
// The first error aborts the run; the cache is then left untouched.
func (e *CompressEngine) Run(ctx context.Context, target, destination string) (*Result, error) {
	start := e.now()

	res, err := e.run(ctx, target, destination, start)
	if err != nil {
		e.Logger.Error().Str("event", EventError).Err(err).Msg("compression failed")
		return nil, err
	}
	return res, nil
}

func (e *CompressEngine) run(ctx context.Context, target, destination string, start time.Time) (*Result, error) {
	m, err := matcher.New(e.Options, e.kinds())
	if err != nil {
		return nil, err
	}
	if err := m.LoadIgnore(ignoreDir(target)); err != nil {
		return nil, err
	}

	tasks, err := walker.Walk(target, m)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		e.Logger.Warn().Str("event", EventNoFiles).Str("target", target).Msg("No files to compress.")
		return &Result{NoFiles: true, Elapsed: e.now().Sub(start)}, nil
	}

	r := &run{}
	if destination != "" {
		if r.dest, err = filepath.Abs(destination); err != nil {
			return nil, fmt.Errorf("resolving destination %s: %w", destination, err)
		}
	}
	if e.Options.Incremental {
		if err := e.openCache(r); err != nil {
			return nil, err
		}
	}

	if e.Options.Verbose && e.Options.OutputFileFormat == "" {
		e.Logger.Info().Msgf("Default output file format: %s", output.DefaultTemplate)
	}

	actions, err := e.processAll(ctx, r, tasks)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Flush(); err != nil {
			return nil, err
		}
	}

	res := &Result{Files: len(tasks)}
	for _, perFile := range actions {
		for _, a := range perFile {
			if a.Action == ActionCompressed {
				res.Compressed = append(res.Compressed, a)
			} else {
				res.Cached = append(res.Cached, a)
			}
			res.BytesBefore += a.BytesBefore
			res.BytesAfter += a.BytesAfter
		}
	}
	res.Elapsed = e.now().Sub(start)

	e.Logger.Info().
		Str("event", EventSummary).
		Int("files", res.Files).
		Int("compressed", len(res.Compressed)).
		Int("cached", len(res.Cached)).
		Int64("bytes_before", res.BytesBefore).
		Int64("bytes_after", res.BytesAfter).
		Dur("elapsed", res.Elapsed).
		Msgf("%d files have been compressed.", res.Files)

	return res, nil
}

func (e *CompressEngine) openCache(r *run) error {
	dir, err := filepath.Abs(e.Options.CacheDir)
	if err != nil {
		return fmt.Errorf("resolving cache dir %s: %w", e.Options.CacheDir, err)
	}

	c, err := cache.Open(dir)
	var corrupt *cache.CorruptionError
	switch {
	case errors.As(err, &corrupt):
		e.Logger.Warn().Str("event", EventCacheCorrupt).Err(err).Msg("revision cache is corrupt, starting empty")
	case err != nil:
		return err
	}

	r.cache = c
	r.store = cache.NewObjectStore(c.Dir())
	return nil
}

// processAll runs every task on a fail-fast pool. Results are indexed by
// task so the report follows traversal order whatever the worker count.
func (e *CompressEngine) processAll(ctx context.Context, r *run, tasks []walker.Task) ([][]FileAction, error) {
	results := make([][]FileAction, len(tasks))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(e.Options.EffectiveWorkers())

	var mu sync.Mutex
	for i, task := range tasks {
		p.Go(func(ctx context.Context) error {
			actions, err := e.processFile(ctx, r, task)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = actions
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *CompressEngine) processFile(ctx context.Context, r *run, task walker.Task) ([]FileAction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fileID, checksum string
	if r.cache != nil {
		sum, err := cache.Checksum(task.Path)
		if err != nil {
			return nil, &CompressionIOError{Path: task.Path, Op: "checksum", Err: err}
		}
		fileID, checksum = cache.FileID(task.Path), sum
	}

	root, dir := outputDir(task, r.dest)
	perm := task.Mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	// One [hash] per source, shared by every codec.
	token := e.Resolver.NewToken()

	actions := make([]FileAction, 0, len(e.Codecs))
	for _, c := range e.Codecs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := e.now()

		outPath := e.Resolver.ResolveWithToken(dir, filepath.Base(task.Path), c.Ext(), token)
		rel, err := filepath.Rel(root, outPath)
		if err != nil {
			return nil, fmt.Errorf("resolving output for %s: %w", task.Path, err)
		}

		action := FileAction{
			Source:      task.Path,
			Output:      outPath,
			Codec:       c.Kind(),
			BytesBefore: task.Size,
		}

		fp := config.Fingerprint(c.Kind(), e.Options)
		key := cache.Key(fileID, fp)

		if r.cache != nil && r.cache.Lookup(fileID, checksum, fp) {
			served, err := e.serveCached(r, &action, root, rel, key, perm)
			if err != nil {
				return nil, err
			}
			if served {
				action.Elapsed = e.now().Sub(start)
				e.logAction(action)
				actions = append(actions, action)
				continue
			}
		}

		n, err := sandbox.WriteStream(root, rel, perm, func(w io.Writer) error {
			return compressFile(task.Path, c, w)
		})
		if err != nil {
			return nil, &CompressionIOError{Path: task.Path, Op: "compress", Err: err}
		}

		if r.cache != nil {
			if err := r.store.Put(key, outPath); err != nil {
				return nil, &CompressionIOError{Path: outPath, Op: "store", Err: err}
			}
			r.cache.Record(fileID, checksum, fp, e.now())
		}

		action.Action = ActionCompressed
		action.BytesAfter = n
		action.Elapsed = e.now().Sub(start)
		e.logAction(action)
		actions = append(actions, action)
	}

	return actions, nil
}

// serveCached completes a cache hit from the artifact store. An output that
// already holds the stored object is kept; anything else at the output path
// is replaced with the stored copy. It reports false when the store has no
// object and the file must be recompressed.
func (e *CompressEngine) serveCached(r *run, action *FileAction, root, rel, key string, perm os.FileMode) (bool, error) {
	if !r.store.Has(key) {
		return false, nil
	}

	same, err := r.store.Matches(key, action.Output)
	if err != nil {
		return false, &CompressionIOError{Path: action.Output, Op: "verify", Err: err}
	}
	if same {
		info, err := os.Stat(action.Output)
		if err != nil {
			return false, &CompressionIOError{Path: action.Output, Op: "verify", Err: err}
		}
		action.Action = ActionCached
		action.BytesAfter = info.Size()
		return true, nil
	}

	obj, found, err := r.store.Open(key)
	if err != nil {
		return false, &CompressionIOError{Path: action.Output, Op: "restore", Err: err}
	}
	if !found {
		return false, nil
	}
	defer obj.Close()

	n, err := sandbox.WriteStream(root, rel, perm, func(w io.Writer) error {
		_, err := io.Copy(w, obj)
		return err
	})
	if err != nil {
		return false, &CompressionIOError{Path: action.Output, Op: "restore", Err: err}
	}
	action.Action = ActionRestored
	action.BytesAfter = n
	return true, nil
}

func (e *CompressEngine) logAction(a FileAction) {
	if !e.Options.Verbose {
		return
	}
	event := EventCompressed
	if a.Action != ActionCompressed {
		event = EventCached
	}
	e.Logger.Info().
		Str("event", event).
		Str("source", a.Source).
		Str("output", a.Output).
		Str("codec", string(a.Codec)).
		Int64("bytes_before", a.BytesBefore).
		Int64("bytes_after", a.BytesAfter).
		Float64("ratio", codec.Ratio(a.BytesBefore, a.BytesAfter)).
		Dur("elapsed", a.Elapsed).
		Msgf("File %s has been %s.", filepath.Base(a.Source), a.Action)
}

func (e *CompressEngine) kinds() []codec.Kind {
	kinds := make([]codec.Kind, len(e.Codecs))
	for i, c := range e.Codecs {
		kinds[i] = c.Kind()
	}
	return kinds
}

func (e *CompressEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func compressFile(src string, c codec.Codec, w io.Writer) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	cw, err := c.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := io.Copy(cw, in); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// outputDir returns the sandbox root and the artifact directory for task.
func outputDir(task walker.Task, dest string) (root, dir string) {
	if dest == "" {
		dir = filepath.Dir(task.Path)
		return dir, dir
	}
	return dest, filepath.Join(dest, filepath.Dir(filepath.FromSlash(task.Rel)))
}

// ignoreDir is where the ignore file is looked up: the target itself, or
// its parent when the target is a file.
func ignoreDir(target string) string {
	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}
