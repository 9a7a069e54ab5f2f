// Package parsecache memoizes parsed units across programs and hosts.
package parsecache

import (
	"go.trai.ch/progcache/internal/core/domain"
)

// unitKey identifies one parse of a path.
type unitKey struct {
	variant domain.TargetVariant
	hash    domain.ContentHash
}

// Cache maps (path, variant, content hash) to the parsed unit.
// It never evicts on its own; callers invalidate paths whose content changed.
// A Cache belongs to one worker and is not safe for concurrent use.
type Cache struct {
	units map[domain.InternedPath]map[unitKey]*domain.ParsedUnit
	size  int
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		units: make(map[domain.InternedPath]map[unitKey]*domain.ParsedUnit),
	}
}

// Get returns the unit parsed from content with the given hash.
func (c *Cache) Get(path string, variant domain.TargetVariant, hash domain.ContentHash) (*domain.ParsedUnit, bool) {
	byKey, ok := c.units[domain.InternPath(path)]
	if !ok {
		return nil, false
	}
	unit, ok := byKey[unitKey{variant: variant, hash: hash}]
	return unit, ok
}

// Set stores unit under its own path, variant and hash.
func (c *Cache) Set(unit *domain.ParsedUnit) {
	path := domain.InternPath(unit.Path)
	byKey, ok := c.units[path]
	if !ok {
		byKey = make(map[unitKey]*domain.ParsedUnit, 1)
		c.units[path] = byKey
	}

	key := unitKey{variant: unit.Variant, hash: unit.Hash}
	if _, exists := byKey[key]; !exists {
		c.size++
	}
	byKey[key] = unit
}

// Invalidate drops every variant and hash stored for path.
func (c *Cache) Invalidate(path string) {
	key := domain.InternPath(path)
	c.size -= len(c.units[key])
	delete(c.units, key)
}

// Len returns the number of stored units.
func (c *Cache) Len() int {
	return c.size
}

// Paths returns the number of distinct paths with at least one unit.
func (c *Cache) Paths() int {
	return len(c.units)
}

// Clear drops all units.
func (c *Cache) Clear() {
	clear(c.units)
	c.size = 0
}
