package fs

import (
	"bytes"
	"os"
	"path/filepath"

	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
)

var _ ports.ContentStore = (*ContentStore)(nil)

// contentEntry is one cached observation of a path.
// An entry with exists == false records a negative lookup.
type contentEntry struct {
	content   []byte
	exists    bool
	preloaded bool
}

// ContentStore is a lazily populated cache of file contents scoped to a base directory.
// It is owned by a single worker and is not safe for concurrent use.
type ContentStore struct {
	baseDir string
	entries map[string]contentEntry
	readFn  func(string) ([]byte, error)
}

// NewContentStore creates a ContentStore rooted at baseDir.
func NewContentStore(baseDir string) *ContentStore {
	return &ContentStore{
		baseDir: cleanDir(baseDir),
		entries: make(map[string]contentEntry),
		readFn:  os.ReadFile,
	}
}

// Read returns the content of path. The first miss reads from disk; later calls
// return the cached content, including cached absence.
func (s *ContentStore) Read(path string) ([]byte, bool) {
	key := s.resolve(path)
	if key == "" {
		return nil, false
	}
	if entry, ok := s.entries[key]; ok {
		return entry.content, entry.exists
	}

	content, err := s.readFn(key)
	if err != nil {
		s.entries[key] = contentEntry{}
		return nil, false
	}
	s.entries[key] = contentEntry{content: content, exists: true}
	return content, true
}

// Preload installs content for path, replacing whatever was cached or on disk.
func (s *ContentStore) Preload(path string, content []byte) {
	key := s.resolve(path)
	if key == "" {
		return
	}
	s.entries[key] = contentEntry{content: bytes.Clone(content), exists: true, preloaded: true}
}

// Exists reports whether path has content.
func (s *ContentStore) Exists(path string) bool {
	_, ok := s.Read(path)
	return ok
}

// IsPreloaded reports whether the cached content of path came from Preload.
func (s *ContentStore) IsPreloaded(path string) bool {
	entry, ok := s.entries[s.resolve(path)]
	return ok && entry.preloaded
}

// Invalidate drops the cached state of path.
func (s *ContentStore) Invalidate(path string) {
	delete(s.entries, s.resolve(path))
}

// InvalidateMatching drops the cached state of every absolute path match accepts.
func (s *ContentStore) InvalidateMatching(match func(path string) bool) {
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
		}
	}
}

// Clear drops all cached state.
func (s *ContentStore) Clear() {
	clear(s.entries)
}

// SetBaseDir switches the base directory. Switching to a different directory clears the store.
func (s *ContentStore) SetBaseDir(dir string) {
	dir = cleanDir(dir)
	if dir == s.baseDir {
		return
	}
	s.baseDir = dir
	s.Clear()
}

// BaseDir returns the current base directory.
func (s *ContentStore) BaseDir() string {
	return s.baseDir
}

// Len returns the number of cached observations, negative ones included.
func (s *ContentStore) Len() int {
	return len(s.entries)
}

func (s *ContentStore) resolve(path string) string {
	return domain.NormalizePath(s.baseDir, path)
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
