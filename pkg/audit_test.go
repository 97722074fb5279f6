package dirauditor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditor(t *testing.T, root string, opts ...Option) *Auditor {
	t.Helper()
	auditor, err := NewAuditor(root, opts...)
	require.NoError(t, err)
	return auditor
}

func TestAudit_BaselineThenUnchanged(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha", "dir/b.txt": "beta"})
	auditor := newTestAuditor(t, root)

	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, OutcomeBaseline, result.Outcome)
	assert.Nil(t, result.Report)
	assert.Equal(t, 2, result.FileCount)
	assert.True(t, result.Persisted)
	assert.FileExists(t, filepath.Join(auditor.Root(), SnapshotFileName))

	result, err = auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiffed, result.Outcome)
	require.NotNil(t, result.Report)
	assert.False(t, result.Report.HasChanges())
	assert.Equal(t, 2, result.FileCount)
}

func TestAudit_RenameDetected(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hello world"})
	auditor := newTestAuditor(t, root)

	_, err := auditor.Audit()
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")))

	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, []RenamedFile{{OldPath: "a.txt", NewPath: "b.txt"}}, result.Report.Renamed)
	assert.Empty(t, result.Report.Added)
	assert.Empty(t, result.Report.Deleted)
	assert.Empty(t, result.Report.Modified)

	// The new snapshot is the baseline of the next run
	result, err = auditor.Audit()
	require.NoError(t, err)
	assert.False(t, result.Report.HasChanges())
}

func TestAudit_ModifiedAddedDeleted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.txt":   "unchanged",
		"edit.txt":   "version one",
		"remove.txt": "going away",
	})
	auditor := newTestAuditor(t, root)

	_, err := auditor.Audit()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "remove.txt")))
	writeTree(t, root, map[string]string{
		"edit.txt":    "version two!",
		"new/add.txt": "brand new",
	})

	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, []string{"edit.txt"}, result.Report.Modified)
	assert.Equal(t, []string{"remove.txt"}, result.Report.Deleted)
	assert.Equal(t, []string{"new/add.txt"}, result.Report.Added)
	assert.Empty(t, result.Report.Renamed)
}

func TestAudit_RenamedAndModified(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hello world"})
	auditor := newTestAuditor(t, root)

	_, err := auditor.Audit()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.txt")))
	writeTree(t, root, map[string]string{"b.txt": "hello there"})

	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, result.Report.Deleted)
	assert.Equal(t, []string{"b.txt"}, result.Report.Added)
	assert.Empty(t, result.Report.Renamed)
}

func TestAudit_CorruptSnapshotAborts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha"})
	corrupt := []byte("2\nonly-one|1|\n")
	snapshotPath := filepath.Join(root, SnapshotFileName)
	require.NoError(t, os.WriteFile(snapshotPath, corrupt, 0644))

	result, err := newTestAuditor(t, root).Audit()
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	// The damaged artifact is left for inspection
	data, err := os.ReadFile(snapshotPath)
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)
}

func TestAudit_CorruptSnapshotRebaseline(t *testing.T) {
	buf := captureLog(t, 0)

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha"})
	require.NoError(t, os.WriteFile(filepath.Join(root, SnapshotFileName), []byte("garbage"), 0644))

	auditor := newTestAuditor(t, root, WithRebaseline(true))
	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, OutcomeBaseline, result.Outcome)
	assert.True(t, result.Rebaselined)
	assert.True(t, result.Persisted)
	assert.Contains(t, buf.String(), "replacing corrupt snapshot")

	loaded, err := auditor.Store().Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, loaded.Paths())
}

func TestAudit_ScanFailureAborts(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha", "locked.txt": "secret"})
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.txt"), 0000))
	t.Cleanup(func() { os.Chmod(filepath.Join(root, "locked.txt"), 0644) })

	result, err := newTestAuditor(t, root).Audit()
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.NoFileExists(t, filepath.Join(root, SnapshotFileName))
}

func TestAudit_WriteFailureStillReports(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha"})
	auditor := newTestAuditor(t, root)
	auditor.store.Path = filepath.Join(root, "missing", SnapshotFileName)

	result, err := auditor.Audit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailure)
	require.NotNil(t, result)
	assert.False(t, result.Persisted)
	assert.Equal(t, 1, result.FileCount)
}

func TestAudit_AttributeFailureIsReported(t *testing.T) {
	buf := captureLog(t, 0)
	original := setHiddenAttribute
	t.Cleanup(func() { setHiddenAttribute = original })
	setHiddenAttribute = func(path string) error {
		return errors.New("read-only attributes")
	}

	root := t.TempDir()
	result, err := newTestAuditor(t, root).Audit()
	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.EqualError(t, result.AttributeErr, "read-only attributes")
	assert.Contains(t, buf.String(), "failed to mark")
}

func TestAudit_WarnsAboutOrphans(t *testing.T) {
	buf := captureLog(t, 0)

	root := t.TempDir()
	orphan := fmt.Sprintf(TempFilePattern, 999999999, 42)
	writeTree(t, root, map[string]string{"a.txt": "alpha", orphan: "stale"})

	result, err := newTestAuditor(t, root).Audit()
	require.NoError(t, err)
	assert.Equal(t, 1, result.FileCount)
	assert.Contains(t, buf.String(), orphan)
}

func TestNewAuditor_InvalidInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"missing", filepath.Join(t.TempDir(), "missing")},
		{"regular file", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor, err := NewAuditor(tt.path)
			assert.Nil(t, auditor)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestNewAuditor_Options(t *testing.T) {
	root := t.TempDir()

	_, err := NewAuditor(root, WithSignatureLength(0))
	assert.Error(t, err)

	_, err = NewAuditor(root, WithExcludes("[bad"))
	assert.Error(t, err)

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyOverrides([]string{"length:2", `exclude:\.log$`, "on_corrupt:rebaseline"}))

	auditor := newTestAuditor(t, root, WithConfig(cfg), WithSignatureLength(3))
	assert.Equal(t, 3, auditor.scanner.SignatureLength)
	assert.True(t, auditor.scanner.Exclude.ShouldExclude("debug.log"))
	assert.True(t, auditor.rebaseline)
}

func TestAudit_ExcludedFilesIgnored(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha", "build/out.o": "obj"})
	auditor := newTestAuditor(t, root, WithExcludes(`^build/`))

	_, err := auditor.Audit()
	require.NoError(t, err)
	writeTree(t, root, map[string]string{"build/out.o": "rebuilt"})

	result, err := auditor.Audit()
	require.NoError(t, err)
	assert.Equal(t, 1, result.FileCount)
	assert.False(t, result.Report.HasChanges())
}
