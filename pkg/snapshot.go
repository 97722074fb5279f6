package dirauditor

// Snapshot is the ordered set of fingerprints describing a directory tree at
// the end of one run
type Snapshot struct {
	Entries []FileFingerprint `json:"entries"`

	index *pathIndex
}

// NewSnapshot creates a snapshot holding entries in the given order
func NewSnapshot(entries []FileFingerprint) *Snapshot {
	if entries == nil {
		entries = make([]FileFingerprint, 0)
	}
	return &Snapshot{Entries: entries}
}

// Add appends a fingerprint and drops any index built so far
func (s *Snapshot) Add(f FileFingerprint) {
	s.Entries = append(s.Entries, f)
	s.index = nil
}

// Len returns the number of entries
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Paths returns the relative paths in snapshot order
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, s.Len())
	if s == nil {
		return paths
	}
	for _, entry := range s.Entries {
		paths = append(paths, entry.RelativePath)
	}
	return paths
}

// Find returns the first entry recorded for relativePath
func (s *Snapshot) Find(relativePath string) (FileFingerprint, bool) {
	if s.Len() == 0 {
		return FileFingerprint{}, false
	}
	entry, _ := s.pathIndex().Find(relativePath)
	if entry == nil {
		return FileFingerprint{}, false
	}
	return *entry, true
}

// SortedEntries returns the entries ordered by path. Repeated paths keep
// their snapshot order.
func (s *Snapshot) SortedEntries() []FileFingerprint {
	if s.Len() == 0 {
		return make([]FileFingerprint, 0)
	}
	index := s.pathIndex()
	sorted := make([]FileFingerprint, 0, index.Length())
	index.ForEach(func(f *FileFingerprint, position int) bool {
		for _, p := range index.Positions(f.RelativePath) {
			sorted = append(sorted, s.Entries[p])
		}
		return true
	})
	return sorted
}

// pathIndex returns the skiplist index over Entries, building it on first use
func (s *Snapshot) pathIndex() *pathIndex {
	if s.index == nil {
		s.index = newPathIndex(s.Entries)
	}
	return s.index
}
