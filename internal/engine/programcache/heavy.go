package programcache

import (
	"weak"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/core/ports"
	"go.trai.ch/progcache/internal/engine/host"
)

// heavyPair is the memory-heavy half of a cache entry.
type heavyPair struct {
	program ports.Program
	host    *host.Host
}

// heavyStore binds handles to heavy pairs. Every pair is held weakly; the most
// recently resolved ones are also pinned strongly so a floor of live programs
// survives garbage collection. Unpinned pairs live until the collector reclaims them.
type heavyStore struct {
	next   domain.Handle
	refs   map[domain.Handle]weak.Pointer[heavyPair]
	pinned *lru.Cache[domain.Handle, *heavyPair]
}

func newHeavyStore(pinnedSize int) (*heavyStore, error) {
	pinned, err := lru.New[domain.Handle, *heavyPair](pinnedSize)
	if err != nil {
		return nil, err
	}
	return &heavyStore{
		refs:   make(map[domain.Handle]weak.Pointer[heavyPair]),
		pinned: pinned,
	}, nil
}

// bind mints a fresh handle for pair and pins it.
func (s *heavyStore) bind(pair *heavyPair) domain.Handle {
	s.next++
	h := s.next
	s.refs[h] = weak.Make(pair)
	s.pinned.Add(h, pair)
	return h
}

// resolve returns the pair bound to h and re-pins it. A reclaimed pair drops its handle.
func (s *heavyStore) resolve(h domain.Handle) (*heavyPair, bool) {
	ref, ok := s.refs[h]
	if !ok {
		return nil, false
	}
	pair := ref.Value()
	if pair == nil {
		delete(s.refs, h)
		return nil, false
	}
	s.pinned.Add(h, pair)
	return pair, true
}

// alive reports whether h still resolves, without touching the pin order.
func (s *heavyStore) alive(h domain.Handle) bool {
	ref, ok := s.refs[h]
	return ok && ref.Value() != nil
}

// replace swaps the program bound to h, keeping the host.
func (s *heavyStore) replace(h domain.Handle, program ports.Program) bool {
	pair, ok := s.resolve(h)
	if !ok {
		return false
	}
	pair.program = program
	return true
}

func (s *heavyStore) release(h domain.Handle) {
	delete(s.refs, h)
	s.pinned.Remove(h)
}

func (s *heavyStore) purge() {
	clear(s.refs)
	s.pinned.Purge()
}

// reclaim drops every reference to h as the garbage collector would.
func (s *heavyStore) reclaim(h domain.Handle) {
	if _, ok := s.refs[h]; ok {
		s.refs[h] = weak.Pointer[heavyPair]{}
	}
	s.pinned.Remove(h)
}
