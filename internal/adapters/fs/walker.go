// Package fs provides file system adapters: a cached content store, a source
// walker, a glob resolver for project roots and a content hasher.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file under root, skipping VCS metadata, node_modules
// and entries whose root-relative path matches one of the ignore patterns.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if d.IsDir() {
				if path != root && (skippedDirs[d.Name()] || w.ignored(root, path, ignores)) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.ignored(root, path, ignores) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// WalkDirs yields every directory under root, root included.
func (w *Walker) WalkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// IsSkippedDir reports whether a directory name is never walked.
func IsSkippedDir(name string) bool {
	return skippedDirs[name]
}

// ignored reports whether the root-relative form of path matches an ignore pattern.
func (w *Walker) ignored(root, path string, ignores []string) bool {
	if len(ignores) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, ignore := range ignores {
		if matched, _ := doublestar.Match(ignore, rel); matched {
			return true
		}
	}
	return false
}
