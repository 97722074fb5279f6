package dirauditor

// FileStatus represents the classification of one path in a ChangeReport
type FileStatus int

const (
	StatusUnchanged FileStatus = iota
	StatusModified
	StatusAdded
	StatusDeleted
	StatusRenamed
)

// String returns the lower-case name of the status
func (s FileStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// RenamedFile links a previous path to the current path holding the same content
type RenamedFile struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// ChangeReport is the classified difference between two snapshots
type ChangeReport struct {
	Modified []string      `json:"modified"`
	Deleted  []string      `json:"deleted"`
	Renamed  []RenamedFile `json:"renamed"`
	Added    []string      `json:"added"`
}

// newChangeReport returns a report with empty, non-nil sets
func newChangeReport() *ChangeReport {
	return &ChangeReport{
		Modified: make([]string, 0),
		Deleted:  make([]string, 0),
		Renamed:  make([]RenamedFile, 0),
		Added:    make([]string, 0),
	}
}

// HasChanges returns true if there are any changes
func (cr *ChangeReport) HasChanges() bool {
	return len(cr.Modified) > 0 || len(cr.Deleted) > 0 || len(cr.Renamed) > 0 || len(cr.Added) > 0
}

// TotalChanges returns the total number of changed files
func (cr *ChangeReport) TotalChanges() int {
	return len(cr.Modified) + len(cr.Deleted) + len(cr.Renamed) + len(cr.Added)
}
