package watcher

import (
	"slices"
	"sync"

	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/core/domain"
)

// ChangeFilter remembers the content hash last seen for each path so events
// that did not change content (touch, editor save without edits) are dropped.
type ChangeFilter struct {
	mu     sync.Mutex
	hasher *fs.Hasher
	hashes map[domain.InternedPath]domain.ContentHash
}

// NewChangeFilter creates an empty filter.
func NewChangeFilter(hasher *fs.Hasher) *ChangeFilter {
	return &ChangeFilter{
		hasher: hasher,
		hashes: make(map[domain.InternedPath]domain.ContentHash),
	}
}

// Seed records the current hashes of paths. Unreadable paths are skipped.
func (f *ChangeFilter) Seed(paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, path := range paths {
		if hash, err := f.hasher.ComputeFileHash(path); err == nil {
			f.hashes[domain.InternPath(path)] = hash
		}
	}
}

// Changed returns the sorted subset of paths whose content differs from the
// last recorded hash. Paths never seen before count as changed, as do paths
// that can no longer be read and were seen before.
func (f *ChangeFilter) Changed(paths []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var changed []string
	for _, path := range paths {
		key := domain.InternPath(path)
		prev, known := f.hashes[key]

		hash, err := f.hasher.ComputeFileHash(path)
		if err != nil {
			if known {
				delete(f.hashes, key)
				changed = append(changed, path)
			}
			continue
		}

		f.hashes[key] = hash
		if !known || prev != hash {
			changed = append(changed, path)
		}
	}

	slices.Sort(changed)
	return changed
}

// Len returns the number of tracked paths.
func (f *ChangeFilter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hashes)
}
