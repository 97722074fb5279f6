package dirauditor

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// setHiddenAttribute is replaced in tests to simulate attribute failures
var setHiddenAttribute = markHidden

// Store persists snapshots to the sidecar artifact of one directory
type Store struct {
	Path string // Absolute path of the artifact

	// AttributeErrorHandler receives failures to mark the artifact hidden.
	// Such failures never fail Save. When nil a warning is logged.
	AttributeErrorHandler func(path string, err error)
}

// NewStore creates a store for the artifact inside root
func NewStore(root string) *Store {
	return &Store{
		Path: filepath.Join(root, SnapshotFileName),
	}
}

// Exists reports whether the artifact is present
func (st *Store) Exists() (bool, error) {
	info, err := os.Stat(st.Path)
	if err == nil {
		if !info.Mode().IsRegular() {
			return false, fmt.Errorf("snapshot path %s is not a regular file", st.Path)
		}
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat snapshot %s: %w", st.Path, err)
}

// Load parses the artifact. It returns ErrNoSnapshot when the artifact does
// not exist and a *CorruptSnapshotError when it cannot be parsed.
func (st *Store) Load() (*Snapshot, error) {
	defer VerboseEnter()()

	file, err := os.Open(st.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to open snapshot %s: %w", st.Path, err)
	}
	defer file.Close()

	snapshot, err := Decode(file)
	if err != nil {
		var corruptErr *CorruptSnapshotError
		if errors.As(err, &corruptErr) {
			corruptErr.Path = st.Path
			return nil, corruptErr
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", st.Path, err)
	}

	VerboseLog(1, "Loaded %d entries from %s", snapshot.Len(), st.Path)
	return snapshot, nil
}

// Save replaces the artifact with snapshot. Data is written to a temp file in
// the same directory, synced, then renamed over the artifact, so a crash
// leaves either the old artifact or the new one. Errors wrap ErrWriteFailure.
func (st *Store) Save(snapshot *Snapshot) error {
	defer VerboseEnter()()

	dir := filepath.Dir(st.Path)
	tempPath := filepath.Join(dir, fmt.Sprintf(TempFilePattern, os.Getpid(), time.Now().UnixNano()))

	if err := st.writeTemp(tempPath, snapshot); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if err := os.Rename(tempPath, st.Path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: failed to replace %s: %w", ErrWriteFailure, st.Path, err)
	}

	if err := syncDir(dir); err != nil {
		return fmt.Errorf("%w: failed to sync directory %s: %w", ErrWriteFailure, dir, err)
	}

	if err := setHiddenAttribute(st.Path); err != nil {
		if st.AttributeErrorHandler != nil {
			st.AttributeErrorHandler(st.Path, err)
		} else {
			Warn("failed to mark %s hidden: %v", st.Path, err)
		}
	}

	VerboseLog(1, "Saved %d entries to %s", snapshot.Len(), st.Path)
	return nil
}

// writeTemp writes the encoded snapshot to path and syncs it
func (st *Store) writeTemp(path string, snapshot *Snapshot) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot %s: %w", path, err)
	}

	lines := encodeLines(snapshot)
	if IsDebugEnabled(DebugStore) {
		VerboseLog(3, "writeTemp: %d lines to %s", len(lines), path)
	}

	if err := writeLines(file, lines); err != nil {
		file.Close()
		return fmt.Errorf("failed to write temp snapshot %s: %w", path, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temp snapshot %s: %w", path, err)
	}

	return file.Close()
}

// Encode writes snapshot in the artifact format to w
func Encode(w io.Writer, snapshot *Snapshot) error {
	bw := bufio.NewWriter(w)
	for _, line := range encodeLines(snapshot) {
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// encodeLines renders the count line and one record line per entry,
// each terminated by a newline
func encodeLines(snapshot *Snapshot) [][]byte {
	lines := make([][]byte, 0, snapshot.Len()+1)
	lines = append(lines, []byte(strconv.Itoa(snapshot.Len())+"\n"))
	if snapshot == nil {
		return lines
	}

	for _, entry := range snapshot.Entries {
		var sb strings.Builder
		sb.WriteString(escapePath(entry.RelativePath))
		sb.WriteString(FieldSeparator)
		sb.WriteString(strconv.FormatUint(uint64(entry.Checksum), 10))
		sb.WriteString(FieldSeparator)
		sb.WriteString(base64.StdEncoding.EncodeToString(entry.Signature))
		sb.WriteByte('\n')
		lines = append(lines, []byte(sb.String()))
	}
	return lines
}

// Decode parses a snapshot in the artifact format. Parse failures are
// returned as *CorruptSnapshotError.
func Decode(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	lineNum := 0

	readLine := func() (string, bool, error) {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", false, err
		}
		if err == io.EOF && line == "" {
			return "", false, nil
		}
		lineNum++
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, true, nil
	}

	countLine, ok, err := readLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CorruptSnapshotError{Line: 1, Reason: "missing count line"}
	}

	count, err := strconv.Atoi(countLine)
	if err != nil || !isDigits(countLine) {
		return nil, &CorruptSnapshotError{Line: lineNum, Reason: fmt.Sprintf("invalid record count %q", countLine)}
	}

	entries := make([]FileFingerprint, 0, min(count, 1<<16))
	for i := 0; i < count; i++ {
		line, ok, err := readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CorruptSnapshotError{Line: lineNum + 1, Reason: fmt.Sprintf("expected %d records, found %d", count, i)}
		}

		entry, reason := decodeRecord(line)
		if reason != "" {
			return nil, &CorruptSnapshotError{Line: lineNum, Reason: reason}
		}
		entries = append(entries, entry)
	}

	for {
		line, ok, err := readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if strings.TrimSpace(line) != "" {
			return nil, &CorruptSnapshotError{Line: lineNum, Reason: fmt.Sprintf("unexpected content after %d records", count)}
		}
	}

	if IsDebugEnabled(DebugStore) {
		VerboseLog(3, "Decode: parsed %d records from %d lines", len(entries), lineNum)
	}
	return NewSnapshot(entries), nil
}

// isDigits reports whether s is a non-empty run of ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// decodeRecord parses one record line, returning a non-empty reason on failure
func decodeRecord(line string) (FileFingerprint, string) {
	fields := strings.Split(line, FieldSeparator)
	if len(fields) < FieldCount {
		return FileFingerprint{}, fmt.Sprintf("record has %d fields, expected %d", len(fields), FieldCount)
	}
	if len(fields) > FieldCount {
		return FileFingerprint{}, fmt.Sprintf("record has %d fields, expected %d (unescaped separator)", len(fields), FieldCount)
	}

	relPath, err := unescapePath(fields[0])
	if err != nil {
		return FileFingerprint{}, err.Error()
	}

	checksum, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return FileFingerprint{}, fmt.Sprintf("invalid checksum %q", fields[1])
	}

	signature, err := base64.StdEncoding.DecodeString(fields[2])
	if err != nil {
		return FileFingerprint{}, fmt.Sprintf("invalid signature %q: %v", fields[2], err)
	}

	return FileFingerprint{
		RelativePath: relPath,
		Checksum:     uint32(checksum),
		Signature:    signature,
	}, ""
}

// escapePath encodes the characters that would break the line format.
// Paths without them are written unchanged.
func escapePath(path string) string {
	if !strings.ContainsAny(path, "%|\n\r") {
		return path
	}
	var sb strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '%', '|', '\n', '\r':
			fmt.Fprintf(&sb, "%%%02X", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// unescapePath reverses escapePath
func unescapePath(field string) (string, error) {
	if !strings.Contains(field, "%") {
		return field, nil
	}
	var sb strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] != '%' {
			sb.WriteByte(field[i])
			continue
		}
		if i+2 >= len(field) {
			return "", fmt.Errorf("truncated escape in path %q", field)
		}
		switch field[i+1 : i+3] {
		case "25":
			sb.WriteByte('%')
		case "7C", "7c":
			sb.WriteByte('|')
		case "0A", "0a":
			sb.WriteByte('\n')
		case "0D", "0d":
			sb.WriteByte('\r')
		default:
			return "", fmt.Errorf("invalid escape %q in path %q", field[i:i+3], field)
		}
		i += 2
	}
	return sb.String(), nil
}
