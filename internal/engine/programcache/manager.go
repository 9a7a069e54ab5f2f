// Package programcache maps requested files to reusable programs.
//
// The cache keeps two tiers: a small strong index of metadata entries ordered
// by recency, and a heavy tier holding the (program, host) pairs behind opaque
// handles. An entry whose heavy pair is gone is purged on the next lookup that
// reaches it and is never reported as a hit.
package programcache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/engine/host"
)

// Lookup is a cache hit.
type Lookup struct {
	Key     domain.CacheKey
	Program ports.Program
	Host    *host.Host
}

// Manager is the program cache. It belongs to one worker and is not safe for concurrent use.
type Manager struct {
	config  domain.CacheConfig
	entries *lru.Cache[domain.CacheKey, *domain.CacheEntry]
	heavy   *heavyStore
	logger  ports.Logger
	now     func() time.Time
}

// New creates a Manager sized by config. Unset sizes fall back to defaults.
func New(config domain.CacheConfig, logger ports.Logger) (*Manager, error) {
	config = config.WithDefaults()

	heavy, err := newHeavyStore(config.PinnedSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config: config,
		heavy:  heavy,
		logger: logger,
		now:    time.Now,
	}

	m.entries, err = lru.NewWithEvict(config.MaxSize, m.onEvict)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) onEvict(key domain.CacheKey, entry *domain.CacheEntry) {
	m.heavy.release(entry.Handle)
	m.logger.Debug(fmt.Sprintf("program cache: dropped %s", key))
}

// FindProgramForFile returns the most recently used program that discovered path
// under optionsHash. path must be normalized. Entries whose heavy pair was
// reclaimed are dropped and the scan continues.
func (m *Manager) FindProgramForFile(path string, optionsHash domain.OptionsHash) (Lookup, bool) {
	keys := m.entries.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		entry, ok := m.entries.Peek(key)
		if !ok || entry.OptionsHash != optionsHash || !entry.Contains(path) {
			continue
		}

		pair, ok := m.heavy.resolve(entry.Handle)
		if !ok {
			m.logger.Warn(fmt.Sprintf("program cache: program for %s was reclaimed, dropping stale entry", key))
			m.entries.Remove(key)
			continue
		}

		m.entries.Get(key)
		entry.HitCount++
		entry.LastUsedAt = m.now()

		return Lookup{Key: key, Program: pair.program, Host: pair.host}, true
	}
	return Lookup{}, false
}

// StoreProgram caches program under the key of rootFiles and optionsHash.
// Every file the program discovered is indexed with the content hash its host
// observed. At capacity the least recently used entry is evicted first.
func (m *Manager) StoreProgram(
	rootFiles []string,
	program ports.Program,
	h *host.Host,
	optionsHash domain.OptionsHash,
) domain.CacheKey {
	key := domain.NewCacheKey(rootFiles, optionsHash)
	if previous, ok := m.entries.Peek(key); ok {
		m.heavy.release(previous.Handle)
	}

	now := m.now()
	roots := make([]domain.InternedPath, len(rootFiles))
	for i, root := range rootFiles {
		roots[i] = domain.InternPath(root)
	}

	entry := &domain.CacheEntry{
		Key:         key,
		RootFiles:   roots,
		OptionsHash: optionsHash,
		CreatedAt:   now,
		LastUsedAt:  now,
		Handle:      m.heavy.bind(&heavyPair{program: program, host: h}),
	}
	snapshot(entry, program, h)

	m.entries.Add(key, entry)
	m.logger.Debug(fmt.Sprintf("program cache: stored %s with %d files", key, len(entry.Files)))
	return key
}

// UpdateProgramInCache replaces the program of an existing entry after an
// incremental rebuild. The entry's file index is left alone; see RefreshEntry.
func (m *Manager) UpdateProgramInCache(key domain.CacheKey, program ports.Program) bool {
	entry, ok := m.entries.Peek(key)
	if !ok {
		return false
	}
	return m.heavy.replace(entry.Handle, program)
}

// RefreshEntry re-derives the file index and content hashes of an entry from its
// current program and host.
func (m *Manager) RefreshEntry(key domain.CacheKey) bool {
	entry, ok := m.entries.Peek(key)
	if !ok {
		return false
	}
	pair, ok := m.heavy.resolve(entry.Handle)
	if !ok {
		return false
	}
	snapshot(entry, pair.program, pair.host)
	return true
}

// Entry returns the metadata of key without touching it. Callers must not modify it.
func (m *Manager) Entry(key domain.CacheKey) (*domain.CacheEntry, bool) {
	return m.entries.Peek(key)
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	return m.entries.Len()
}

// GetCacheStats returns a snapshot of the cache, most recently used first.
func (m *Manager) GetCacheStats() domain.CacheStats {
	now := m.now()
	keys := m.entries.Keys()

	stats := domain.CacheStats{
		Size:       len(keys),
		MaxSize:    m.config.MaxSize,
		PinnedSize: m.config.PinnedSize,
		Entries:    make([]domain.EntryStats, 0, len(keys)),
	}
	for i := len(keys) - 1; i >= 0; i-- {
		entry, ok := m.entries.Peek(keys[i])
		if !ok {
			continue
		}
		stats.Entries = append(stats.Entries, domain.EntryStats{
			Key:        entry.Key,
			RootFiles:  entry.RootPaths(),
			FileCount:  len(entry.Files),
			HitCount:   entry.HitCount,
			CreatedAt:  entry.CreatedAt,
			LastUsedAt: entry.LastUsedAt,
			Age:        now.Sub(entry.CreatedAt),
			Live:       m.heavy.alive(entry.Handle),
		})
	}
	return stats
}

// Clear drops every entry and heavy pair.
func (m *Manager) Clear() {
	m.entries.Purge()
	m.heavy.purge()
}

func snapshot(entry *domain.CacheEntry, program ports.Program, h *host.Host) {
	sourceFiles := program.SourceFiles()
	files := make(map[domain.InternedPath]struct{}, len(sourceFiles)+len(entry.RootFiles))
	hashes := make(map[domain.InternedPath]domain.ContentHash, len(sourceFiles))

	add := func(p domain.InternedPath) {
		files[p] = struct{}{}
		if hash, ok := h.ContentHash(p.String()); ok {
			hashes[p] = hash
		}
	}
	for _, root := range entry.RootFiles {
		add(root)
	}
	for _, file := range sourceFiles {
		add(domain.InternPath(file))
	}

	entry.Files = files
	entry.FileHashes = hashes
}
