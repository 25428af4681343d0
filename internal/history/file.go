package history

// File is the on-disk history: read once when a session starts and
// rewritten once when it ends. Both directions are best-effort.
type File struct {
	Path string
	// MaxEntries caps how many entries are written. Zero selects
	// DefaultMaxEntries.
	MaxEntries int
}

// Load fills s from the file.
func (f File) Load(s *Store) {
	s.Load(f.Path)
}

// Persist writes the most recent entries of s to the file.
func (f File) Persist(s *Store) {
	s.Persist(f.Path, f.MaxEntries)
}
