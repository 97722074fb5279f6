package dirauditor

import "sort"

// DuplicateGroup represents files sharing the same checksum and signature.
// Renames among members of one group cannot be told apart.
type DuplicateGroup struct {
	Checksum  uint32   `json:"checksum"`
	Signature []byte   `json:"signature"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
}

// DuplicateGroups returns every content fingerprint held by more than one
// entry, ordered by the first path of each group
func (s *Snapshot) DuplicateGroups() []DuplicateGroup {
	result := make([]DuplicateGroup, 0)
	if s.Len() == 0 {
		return result
	}

	for _, positions := range contentPositions(s) {
		if len(positions) < 2 {
			continue
		}
		first := s.Entries[positions[0]]
		files := make([]string, 0, len(positions))
		for _, position := range positions {
			files = append(files, s.Entries[position].RelativePath)
		}
		result = append(result, DuplicateGroup{
			Checksum:  first.Checksum,
			Signature: first.Signature,
			Files:     files,
			Count:     len(files),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Files[0] < result[j].Files[0]
	})
	return result
}
