package dirauditor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Scanner computes a Snapshot for a directory tree
type Scanner struct {
	SignatureLength int            // Bytes sampled per file; <= 0 selects DefaultSignatureLength
	Exclude         *ExcludeFilter // Optional, nil excludes nothing
}

// NewScanner creates a scanner with the given signature length and filter
func NewScanner(signatureLength int, exclude *ExcludeFilter) *Scanner {
	if signatureLength <= 0 {
		signatureLength = DefaultSignatureLength
	}
	return &Scanner{
		SignatureLength: signatureLength,
		Exclude:         exclude,
	}
}

// Scan walks root in lexical order and fingerprints every regular file.
// The sidecar artifact and its temp files are skipped wherever they occur.
// The first walk or read error aborts the scan with a *ScanError; a partial
// snapshot is never returned.
func (s *Scanner) Scan(root string) (*Snapshot, error) {
	defer VerboseEnter()()

	snapshot := NewSnapshot(nil)
	var totalBytes int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &ScanError{Path: path, Err: walkErr}
		}

		if path == root {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return &ScanError{Path: path, Err: err}
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.Exclude.ShouldExclude(relPath + "/") {
				if IsDebugEnabled(DebugScan) {
					VerboseLog(3, "Scan: pruning excluded directory %s", relPath)
				}
				return filepath.SkipDir
			}
			return nil
		}

		if isReservedName(d.Name()) {
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "Scan: skipping reserved file %s", relPath)
			}
			return nil
		}

		if !d.Type().IsRegular() {
			VerboseLog(2, "Skipping non-regular file %s (%s)", relPath, d.Type())
			return nil
		}

		if s.Exclude.ShouldExclude(relPath) {
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "Scan: skipping excluded file %s", relPath)
			}
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return &ScanError{Path: path, Err: err}
		}

		fingerprint := NewFingerprint(relPath, data, s.SignatureLength)
		snapshot.Add(fingerprint)
		totalBytes += int64(len(data))

		if IsDebugEnabled(DebugScan) {
			VerboseLog(3, "Scan: %s", fingerprint)
		}
		return nil
	})
	if err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			return nil, scanErr
		}
		return nil, &ScanError{Path: root, Err: err}
	}

	VerboseLog(1, "Scanned %d files (%d bytes) under %s", snapshot.Len(), totalBytes, root)
	return snapshot, nil
}
