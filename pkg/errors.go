package dirauditor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the audited path is empty or is not an existing directory.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnreadable is returned when a file cannot be read during a scan.
	ErrUnreadable = errors.New("unreadable file")
	// ErrCorruptSnapshot is returned when the sidecar artifact exists but cannot be parsed.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrWriteFailure is returned when the snapshot cannot be persisted.
	ErrWriteFailure = errors.New("snapshot write failure")
	// ErrNoSnapshot is returned by Store.Load when no artifact exists yet.
	ErrNoSnapshot = errors.New("no snapshot")
)

// ScanError reports the file that aborted a scan
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrUnreadable, e.Path, e.Err)
}

func (e *ScanError) Unwrap() []error {
	return []error{ErrUnreadable, e.Err}
}

// CorruptSnapshotError describes where and why a snapshot failed to parse.
// Line is 1-based; 0 means the problem is not tied to a single line.
type CorruptSnapshotError struct {
	Path   string
	Line   int
	Reason string
}

func (e *CorruptSnapshotError) Error() string {
	where := e.Path
	if where == "" {
		where = "<stream>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%v: %s:%d: %s", ErrCorruptSnapshot, where, e.Line, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrCorruptSnapshot, where, e.Reason)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return ErrCorruptSnapshot
}
