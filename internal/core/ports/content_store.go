package ports

// ContentStore is a lazily populated, cached view of file contents.
//
// Once a path has been read or preloaded its content stays stable until the path
// is invalidated. Relative paths resolve against the store's base directory.
//
//go:generate mockgen -source=content_store.go -destination=mocks/mock_content_store.go -package=mocks
type ContentStore interface {
	// Read returns the content of path, reading it from disk on the first miss.
	// Missing files are cached as absent and reported with ok == false.
	Read(path string) (content []byte, ok bool)
	// Preload installs caller-provided content for path. It takes precedence over disk.
	Preload(path string, content []byte)
	// Exists reports whether path has content.
	Exists(path string) bool
	// Invalidate drops any cached state for path.
	Invalidate(path string)
	// InvalidateMatching drops cached state for every path the predicate accepts.
	InvalidateMatching(match func(path string) bool)
	// Clear drops all cached state.
	Clear()
	// SetBaseDir changes the base directory. Changing it clears the store.
	SetBaseDir(dir string)
	// BaseDir returns the current base directory.
	BaseDir() string
}
