package dirauditor

// Diff classifies every path of previous and current into exactly one of
// unchanged, modified, deleted, renamed or added.
//
// A current path also present in previous is unchanged or modified. A new
// path whose checksum and signature equal those of a not yet claimed
// previous entry is a rename of the first such entry in previous order;
// otherwise it is added. Previous paths left unmatched are deleted, once
// each even when the snapshot recorded them more than once.
// A file that is both renamed and modified therefore shows up as one
// deletion and one addition.
func Diff(previous, current *Snapshot) *ChangeReport {
	defer VerboseEnter()()

	report := newChangeReport()
	if previous == nil {
		previous = NewSnapshot(nil)
	}
	if current == nil {
		current = NewSnapshot(nil)
	}

	// pending[i] is true while previous.Entries[i] is still a deletion candidate
	pending := make([]bool, previous.Len())
	for i := range pending {
		pending[i] = true
	}
	claimed := make([]bool, previous.Len())
	byContent := contentPositions(previous)
	index := previous.pathIndex()

	classify(previous, current, index, byContent, pending, claimed, func(status FileStatus, oldPath, newPath string) {
		if IsDebugEnabled(DebugDiff) {
			VerboseLog(3, "Diff: %s %s -> %s", status, oldPath, newPath)
		}
		switch status {
		case StatusModified:
			report.Modified = append(report.Modified, newPath)
		case StatusAdded:
			report.Added = append(report.Added, newPath)
		case StatusRenamed:
			report.Renamed = append(report.Renamed, RenamedFile{OldPath: oldPath, NewPath: newPath})
		}
	})

	// A path recorded more than once is deleted once, and not at all when
	// one of its copies was renamed
	settled := make(map[string]bool)
	for i, entry := range previous.Entries {
		if !pending[i] {
			settled[entry.RelativePath] = true
		}
	}
	for i, entry := range previous.Entries {
		if pending[i] && !settled[entry.RelativePath] {
			settled[entry.RelativePath] = true
			report.Deleted = append(report.Deleted, entry.RelativePath)
		}
	}

	VerboseLog(2, "Diff: %d modified, %d deleted, %d renamed, %d added",
		len(report.Modified), len(report.Deleted), len(report.Renamed), len(report.Added))
	return report
}

// classify runs the per-file matching of Diff and reports each current path
// through callback. pending and claimed are indexed by previous position and
// are updated in place.
func classify(previous, current *Snapshot, index *pathIndex, byContent map[string][]int,
	pending, claimed []bool, callback func(status FileStatus, oldPath, newPath string)) {

	for _, f := range current.Entries {
		if match, _ := index.Find(f.RelativePath); match != nil {
			// A repeated path is matched as a whole, never left behind as deleted
			for _, position := range index.Positions(f.RelativePath) {
				pending[position] = false
			}
			if match.SameContent(f) {
				callback(StatusUnchanged, f.RelativePath, f.RelativePath)
			} else {
				callback(StatusModified, f.RelativePath, f.RelativePath)
			}
			continue
		}

		if position := firstUnclaimed(byContent[f.contentKey()], claimed); position >= 0 {
			claimed[position] = true
			pending[position] = false
			callback(StatusRenamed, previous.Entries[position].RelativePath, f.RelativePath)
			continue
		}

		callback(StatusAdded, "", f.RelativePath)
	}
}

// contentPositions groups previous positions by content key, in snapshot order
func contentPositions(snapshot *Snapshot) map[string][]int {
	positions := make(map[string][]int, snapshot.Len())
	for i, entry := range snapshot.Entries {
		key := entry.contentKey()
		positions[key] = append(positions[key], i)
	}
	return positions
}

// firstUnclaimed returns the first position not yet claimed, or -1
func firstUnclaimed(positions []int, claimed []bool) int {
	for _, position := range positions {
		if !claimed[position] {
			return position
		}
	}
	return -1
}
