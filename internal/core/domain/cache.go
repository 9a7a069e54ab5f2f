package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultMaxPrograms is the default capacity of the program metadata index.
	DefaultMaxPrograms = 10
	// DefaultPinnedPrograms is the default number of programs kept strongly reachable.
	DefaultPinnedPrograms = 5
)

// CacheConfig sizes the two tiers of the program cache.
type CacheConfig struct {
	// MaxSize bounds the number of metadata entries.
	MaxSize int
	// PinnedSize bounds the number of heavy (program, host) pairs held strongly.
	// Pairs beyond it stay reachable only until the garbage collector reclaims them.
	PinnedSize int
}

// DefaultCacheConfig returns the default cache sizing.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize:    DefaultMaxPrograms,
		PinnedSize: DefaultPinnedPrograms,
	}
}

// WithDefaults fills unset or invalid sizes with defaults.
func (c CacheConfig) WithDefaults() CacheConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxPrograms
	}
	if c.PinnedSize <= 0 {
		c.PinnedSize = min(DefaultPinnedPrograms, c.MaxSize)
	}
	return c
}

// CacheKey identifies a program by its sorted root files and options hash.
type CacheKey string

// NewCacheKey computes the key for a set of normalized root files under an options hash.
func NewCacheKey(rootFiles []string, optionsHash OptionsHash) CacheKey {
	sorted := slices.Clone(rootFiles)
	slices.Sort(sorted)

	hasher := xxhash.New()
	for _, root := range sorted {
		_, _ = hasher.WriteString(root)
		_, _ = hasher.Write([]byte{0})
	}
	return CacheKey(ContentHash(hasher.Sum64()).String() + ":" + string(optionsHash))
}

// OptionsHash returns the options part of the key.
func (k CacheKey) OptionsHash() OptionsHash {
	_, after, found := strings.Cut(string(k), ":")
	if !found {
		return ""
	}
	return OptionsHash(after)
}

// Handle is an opaque generational ID binding a metadata entry to its heavy objects.
// Handles are never reused within one cache.
type Handle uint64

// CacheEntry is the strong metadata kept for one cached program.
type CacheEntry struct {
	Key         CacheKey
	RootFiles   []InternedPath
	Files       map[InternedPath]struct{}
	FileHashes  map[InternedPath]ContentHash
	OptionsHash OptionsHash
	CreatedAt   time.Time
	LastUsedAt  time.Time
	HitCount    int
	Handle      Handle
}

// Contains reports whether the program discovered the normalized path.
func (e *CacheEntry) Contains(path string) bool {
	_, ok := e.Files[InternPath(path)]
	return ok
}

// FilePaths returns the discovered files in sorted order.
func (e *CacheEntry) FilePaths() []string {
	paths := make([]string, 0, len(e.Files))
	for p := range e.Files {
		paths = append(paths, p.String())
	}
	slices.Sort(paths)
	return paths
}

// RootPaths returns the root files as strings.
func (e *CacheEntry) RootPaths() []string {
	paths := make([]string, len(e.RootFiles))
	for i, p := range e.RootFiles {
		paths[i] = p.String()
	}
	return paths
}

// EntryStats is the read-only view of one cache entry.
type EntryStats struct {
	Key        CacheKey
	RootFiles  []string
	FileCount  int
	HitCount   int
	CreatedAt  time.Time
	LastUsedAt time.Time
	Age        time.Duration
	// Live reports whether the entry's heavy objects are still reachable.
	Live bool
}

// CacheStats is the diagnostics snapshot of a program cache.
type CacheStats struct {
	Size       int
	MaxSize    int
	PinnedSize int
	// Entries are ordered from most to least recently used.
	Entries []EntryStats
}
