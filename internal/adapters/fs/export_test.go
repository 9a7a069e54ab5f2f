package fs

// SetReadFunc replaces the disk reader for tests.
func (s *ContentStore) SetReadFunc(fn func(string) ([]byte, error)) {
	s.readFn = fn
}
