package dirauditor

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// pathIndex maps relative paths to entries of a snapshot without copying them.
// The context stored with each item is the entry's position in the snapshot.
type pathIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[FileFingerprint, string, int]

	// later positions of paths that occur more than once, in snapshot order
	repeats map[string][]int
}

// newPathIndex builds an index over entries. The slice must not be resized
// while the index is in use since the skiplist holds pointers into it.
// When a path occurs more than once the first occurrence is the one found;
// the others are still reported by Positions.
func newPathIndex(entries []FileFingerprint) *pathIndex {
	getKeyFromItem := func(f *FileFingerprint) string {
		return f.RelativePath
	}

	getItemSize := func(f *FileFingerprint) int {
		return len(f.RelativePath) + len(f.Signature) + 4
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	idx := &pathIndex{
		skiplist: zcsl.MakeZeroCopySkiplist[FileFingerprint, string, int](
			16,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
		repeats: make(map[string][]int),
	}

	for i := range entries {
		if _, found := idx.Find(entries[i].RelativePath); found >= 0 {
			if IsDebugEnabled(DebugDiff) {
				VerboseLog(3, "pathIndex: duplicate path %q at position %d (first at %d)", entries[i].RelativePath, i, found)
			}
			idx.repeats[entries[i].RelativePath] = append(idx.repeats[entries[i].RelativePath], i)
			continue
		}
		idx.skiplist.Insert(&entries[i], i)
	}

	return idx
}

// Find returns the entry stored for relativePath and its snapshot position,
// or nil and -1 when the path is not indexed
func (pi *pathIndex) Find(relativePath string) (*FileFingerprint, int) {
	itemPtr, position := pi.skiplist.Find(relativePath)
	if itemPtr != nil {
		return itemPtr.Item(), position
	}
	return nil, -1
}

// Positions returns every snapshot position holding relativePath, first
// occurrence first, or nil when the path is not indexed
func (pi *pathIndex) Positions(relativePath string) []int {
	_, first := pi.Find(relativePath)
	if first < 0 {
		return nil
	}
	return append([]int{first}, pi.repeats[relativePath]...)
}

// Length returns the number of distinct paths in the index
func (pi *pathIndex) Length() int {
	return pi.skiplist.Length()
}

// ForEach iterates through distinct paths in path order, passing the first
// entry and position recorded for each
func (pi *pathIndex) ForEach(callback func(*FileFingerprint, int) bool) {
	for current := pi.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item(), current.Context()) {
			break
		}
	}
}
