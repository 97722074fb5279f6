package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirauditor "github.com/mattkeenan/dirauditor/pkg"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		dirauditor.SetLogOutput(nil)
		dirauditor.SetVerboseLevel(0)
		dirauditor.SetDebugFlags("")
	})

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCLI_AuditBaselineThenRename(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world")

	res := runCLI(t, "", "--color", "never", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Baseline created: 1 files recorded")

	res = runCLI(t, "", "audit", "--color", "never", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No changes since the last run")

	require.NoError(t, os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "b.txt")))
	res = runCLI(t, "", "audit", "--color", "never", root)
	require.NoError(t, res.err)
	assert.Equal(t, "Renamed: 'a.txt' -> 'b.txt'\n1 changes, 1 files now recorded\n", res.stdout)
}

func TestCLI_PromptsForDirectory(t *testing.T) {
	root := t.TempDir()

	res := runCLI(t, root+"\n", "--color", "never")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Enter the full path of the directory to audit")
	assert.Contains(t, res.stdout, "Baseline created: 0 files")
}

func TestCLI_InvalidDirectory(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"empty prompt answer", "\n", nil},
		{"missing directory", "", []string{filepath.Join(t.TempDir(), "missing")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.stdin, tt.args...)
			assert.ErrorIs(t, res.err, dirauditor.ErrInvalidInput)
		})
	}
}

func TestCLI_JSONOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")

	require.NoError(t, runCLI(t, "", root).err)
	writeFile(t, filepath.Join(root, "b.txt"), "bravo")

	res := runCLI(t, "", "--format", "json", root)
	require.NoError(t, res.err)

	var result struct {
		Outcome string                  `json:"outcome"`
		Report  dirauditor.ChangeReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	assert.Equal(t, "diffed", result.Outcome)
	assert.Equal(t, []string{"b.txt"}, result.Report.Added)
	assert.Empty(t, result.Report.Deleted)
}

func TestCLI_CorruptSnapshot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, dirauditor.SnapshotFileName), "1\na.txt|258\n")

	res := runCLI(t, "", root)
	assert.ErrorIs(t, res.err, dirauditor.ErrCorruptSnapshot)
	assert.Empty(t, res.stdout)

	res = runCLI(t, "", "--color", "never", "--rebaseline", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Corrupt snapshot replaced")
	assert.Contains(t, res.stderr, "Warning: replacing corrupt snapshot")
}

func TestCLI_Show(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")

	res := runCLI(t, "", "show", root)
	assert.ErrorIs(t, res.err, dirauditor.ErrNoSnapshot)

	require.NoError(t, runCLI(t, "", root).err)

	res = runCLI(t, "", "show", "--format", "json", root)
	require.NoError(t, res.err)

	var snapshot dirauditor.Snapshot
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &snapshot))
	require.Equal(t, 1, snapshot.Len())
	assert.Equal(t, "a.txt", snapshot.Entries[0].RelativePath)
	assert.Equal(t, dirauditor.Checksum([]byte("alpha")), snapshot.Entries[0].Checksum)
}

func TestCLI_Dupes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.txt"), "same")
	writeFile(t, filepath.Join(root, "sub/two.txt"), "same")
	writeFile(t, filepath.Join(root, "other.txt"), "different")

	res := runCLI(t, "", "dupes", "--color", "never", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "(2 files)\n  one.txt\n  sub/two.txt\n")
	assert.NotContains(t, res.stdout, "other.txt")
	assert.NoFileExists(t, filepath.Join(root, dirauditor.SnapshotFileName))
}

func TestCLI_ExcludeAndOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "keep")
	writeFile(t, filepath.Join(root, "skip.log"), "log")

	res := runCLI(t, "", "--color", "never", "--exclude", `\.log$`, root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "1 files recorded")

	res = runCLI(t, "", "--set", "format:xml", root)
	assert.Error(t, res.err)

	res = runCLI(t, "", "--signature-length", "0", root)
	assert.Error(t, res.err)
}

func TestCLI_ConfigFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, "a.tmp"), "scratch")

	configPath := filepath.Join(t.TempDir(), "dirauditor.ini")
	writeFile(t, configPath, "[output]\nformat = json\n\n[scan]\nexclude = \\.tmp$\n")

	res := runCLI(t, "", "--config", configPath, root)
	require.NoError(t, res.err)

	var result struct {
		FileCount int `json:"file_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	assert.Equal(t, 1, result.FileCount)

	res = runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.ini"), root)
	assert.Error(t, res.err)

	badConfig := filepath.Join(t.TempDir(), "bad.ini")
	writeFile(t, badConfig, "[verbose]\nlevel = loud\n")
	res = runCLI(t, "", "show", "--config", badConfig, root)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid verbose level")
}
