// Package walker enumerates the files under a target in a deterministic,
// depth-first order.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Task is one discovered eligible file.
type Task struct {
	Path string // absolute path
	Size int64
	Mode fs.FileMode
	Root string // absolute walk root directory
	Rel  string // slash separated path relative to Root
}

// Filter selects files and prunes directories during a walk.
type Filter interface {
	Eligible(rel string, size int64) bool
	SkipDir(abs, rel string) bool
}

// PathNotFoundError is returned when the walk root does not exist.
type PathNotFoundError struct {
	Path string
	Err  error
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

func (e *PathNotFoundError) Unwrap() error {
	return e.Err
}

// Walk returns the eligible files under root. Directory entries are visited
// in lexical order, depth first, parents before children. A root naming a
// regular file yields at most that file. An empty result is not an error.
func Walk(root string, filter Filter) ([]Task, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathNotFoundError{Path: root, Err: err}
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		dir := filepath.Dir(abs)
		rel := filepath.Base(abs)
		if !info.Mode().IsRegular() || !filter.Eligible(rel, info.Size()) {
			return nil, nil
		}
		return []Task{{Path: abs, Size: info.Size(), Mode: info.Mode(), Root: dir, Rel: rel}}, nil
	}

	var tasks []Task
	stack := []string{""}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		path := filepath.Join(abs, filepath.FromSlash(rel))

		if rel != "" {
			info, err := os.Stat(path)
			if err != nil {
				// Dangling symlink.
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
			if !info.IsDir() {
				if info.Mode().IsRegular() && filter.Eligible(rel, info.Size()) {
					tasks = append(tasks, Task{Path: path, Size: info.Size(), Mode: info.Mode(), Root: abs, Rel: rel})
				}
				continue
			}
			if filter.SkipDir(path, rel) {
				continue
			}
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		// ReadDir sorts by name; push in reverse so the first entry pops first.
		for i := len(entries) - 1; i >= 0; i-- {
			child := entries[i].Name()
			if rel != "" {
				child = rel + "/" + child
			}
			stack = append(stack, child)
		}
	}

	return tasks, nil
}
