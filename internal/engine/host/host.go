// Package host adapts the content store and parse cache to the compiler host
// interface a frontend builds programs through.
package host

import (
	"bytes"
	"strconv"
	"time"

	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/engine/parsecache"
	"go.trai.ch/zerr"
)

var _ ports.CompilerHost = (*Host)(nil)

// TraceOp names a host operation recorded in the call trace.
type TraceOp string

const (
	// OpReadFile records a ReadFile call.
	OpReadFile TraceOp = "readFile"
	// OpFileExists records a FileExists call.
	OpFileExists TraceOp = "fileExists"
	// OpGetSourceFile records a GetSourceFile call.
	OpGetSourceFile TraceOp = "getSourceFile"
	// OpUpdateFile records an UpdateFile call, changed or not.
	OpUpdateFile TraceOp = "updateFile"
	// OpRemoveFile records a RemoveFile call, known path or not.
	OpRemoveFile TraceOp = "removeFile"
)

// TraceEntry is one recorded host operation.
type TraceEntry struct {
	Op   TraceOp
	Path string
	At   time.Time
}

// traceLimit bounds the call trace; older entries are dropped first.
const traceLimit = 2048

// Host is the per-program compiler host. It records the content it has observed
// for each path ("known content") and detects drift against that record only.
// A Host belongs to one worker and is not safe for concurrent use.
type Host struct {
	content ports.ContentStore
	units   *parsecache.Cache
	parser  ports.Parser

	versions map[string]int
	known    map[string][]byte
	trace    []TraceEntry
	now      func() time.Time
}

// New creates a Host reading through content and memoizing parses in units.
func New(content ports.ContentStore, units *parsecache.Cache, parser ports.Parser) *Host {
	return &Host{
		content:  content,
		units:    units,
		parser:   parser,
		versions: make(map[string]int),
		known:    make(map[string][]byte),
		now:      time.Now,
	}
}

// ReadFile returns the content of path. The first successful read records the
// content as known for this host.
func (h *Host) ReadFile(path string) ([]byte, bool) {
	p := h.normalize(path)
	h.record(OpReadFile, p)
	return h.read(p)
}

func (h *Host) read(p string) ([]byte, bool) {
	if known, ok := h.known[p]; ok {
		return known, true
	}
	content, ok := h.content.Read(p)
	if !ok {
		return nil, false
	}
	h.known[p] = content
	return content, true
}

// FileExists reports whether path has content, either known to this host or in the store.
func (h *Host) FileExists(path string) bool {
	p := h.normalize(path)
	h.record(OpFileExists, p)
	if _, ok := h.known[p]; ok {
		return true
	}
	return h.content.Exists(p)
}

// GetSourceFile returns the parsed unit for path under variant, tagged with this
// host's version string for the path. Parses are shared through the unit cache
// keyed by content hash unless forceFresh is set.
func (h *Host) GetSourceFile(path string, variant domain.TargetVariant, forceFresh bool) (*domain.ParsedUnit, error) {
	p := h.normalize(path)
	h.record(OpGetSourceFile, p)

	content, ok := h.read(p)
	if !ok {
		return nil, zerr.With(domain.ErrSourceNotFound, "path", p)
	}
	hash := domain.HashContent(content)

	if !forceFresh {
		if unit, hit := h.units.Get(p, variant, hash); hit {
			return unit.WithVersion(h.CreateHash(p)), nil
		}
	}

	unit, err := h.parser.Parse(p, content, variant)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse source file"), "path", p)
	}
	unit.Path = p
	unit.Variant = variant
	unit.Hash = hash
	h.units.Set(unit)

	return unit.WithVersion(h.CreateHash(p)), nil
}

// UpdateFile compares content with what this host last observed for path.
// When it differs the version is bumped, the content is written through to the
// store, cached parses of path are dropped and true is returned. Otherwise
// nothing is written and false is returned.
func (h *Host) UpdateFile(path string, content []byte) bool {
	p := h.normalize(path)
	h.record(OpUpdateFile, p)
	if known, ok := h.known[p]; ok && bytes.Equal(known, content) {
		return false
	}

	content = bytes.Clone(content)
	h.versions[p]++
	h.content.Preload(p, content)
	h.units.Invalidate(p)
	h.known[p] = content
	return true
}

// RemoveFile forgets a file that no longer exists. It reports whether the host
// had observed the file.
func (h *Host) RemoveFile(path string) bool {
	p := h.normalize(path)
	h.record(OpRemoveFile, p)
	if _, ok := h.known[p]; !ok {
		return false
	}

	h.versions[p]++
	delete(h.known, p)
	h.units.Invalidate(p)
	return true
}

// GetVersion returns how many times this host has seen path change.
func (h *Host) GetVersion(path string) int {
	return h.versions[h.normalize(path)]
}

// CreateHash returns the version of path as a string. Frontends diff files by it
// instead of hashing content.
func (h *Host) CreateHash(path string) string {
	return strconv.Itoa(h.GetVersion(path))
}

// ContentHash returns the hash of the content this host last observed for path.
func (h *Host) ContentHash(path string) (domain.ContentHash, bool) {
	known, ok := h.known[h.normalize(path)]
	if !ok {
		return 0, false
	}
	return domain.HashContent(known), true
}

// Identity returns the host's view of path.
func (h *Host) Identity(path string) (domain.SourceIdentity, bool) {
	p := h.normalize(path)
	hash, ok := h.ContentHash(p)
	if !ok {
		return domain.SourceIdentity{}, false
	}
	return domain.SourceIdentity{Path: p, Version: h.versions[p], Hash: hash}, true
}

// Trace returns a copy of the recorded operations, oldest first.
func (h *Host) Trace() []TraceEntry {
	out := make([]TraceEntry, len(h.trace))
	copy(out, h.trace)
	return out
}

func (h *Host) record(op TraceOp, path string) {
	if len(h.trace) >= traceLimit {
		n := copy(h.trace, h.trace[len(h.trace)-traceLimit/2:])
		h.trace = h.trace[:n]
	}
	h.trace = append(h.trace, TraceEntry{Op: op, Path: path, At: h.now()})
}

func (h *Host) normalize(path string) string {
	return domain.NormalizePath(h.content.BaseDir(), path)
}
