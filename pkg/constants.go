package dirauditor

import "strings"

// File constants
const (
	SnapshotFileName = ".dirauditor"
	TempFilePrefix   = SnapshotFileName + ".tmp-"
	TempFilePattern  = TempFilePrefix + "%d-%d"
)

// Snapshot format constants
const (
	FieldSeparator = "|"
	FieldCount     = 3
)

// DefaultSignatureLength is the number of bytes sampled from the middle of
// each file when no other length is configured.
const DefaultSignatureLength = 4

// Debug flag names understood by IsDebugEnabled
const (
	DebugScan  = "scan"
	DebugStore = "store"
	DebugDiff  = "diff"
)

// isReservedName reports whether a base name belongs to the auditor itself
// and must never appear in a scan.
func isReservedName(name string) bool {
	return name == SnapshotFileName || strings.HasPrefix(name, TempFilePrefix)
}
