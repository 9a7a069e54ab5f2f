package domain

import "unique"

// InternedPath is a normalized absolute file path backed by a unique.Handle[string].
// Cache metadata stores one entry per discovered file, so the same paths repeat
// across entries and interning keeps the strong index small.
type InternedPath struct {
	h unique.Handle[string]
}

// NewInternedPath normalizes path against baseDir and interns it.
func NewInternedPath(baseDir, path string) InternedPath {
	return InternPath(NormalizePath(baseDir, path))
}

// InternPath interns an already normalized path.
func InternPath(path string) InternedPath {
	return InternedPath{h: unique.Make(path)}
}

// String returns the underlying path.
func (p InternedPath) String() string {
	if p.IsZero() {
		return ""
	}
	return p.h.Value()
}

// IsZero reports whether the path was never set.
func (p InternedPath) IsZero() bool {
	var zero unique.Handle[string]
	return p.h == zero
}

// MarshalText implements encoding.TextMarshaler.
func (p InternedPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *InternedPath) UnmarshalText(text []byte) error {
	p.h = unique.Make(string(text))
	return nil
}
