package dirauditor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// FindOrphanedTempFiles lists temp snapshot files in dir whose writer
// process is no longer running. They are left behind by a crash between
// writing and renaming and are never part of a scan.
func FindOrphanedTempFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var orphans []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, TempFilePrefix) {
			continue
		}
		pid := extractPidFromTempFileName(name)
		if pid > 0 && !isProcessRunning(pid) {
			orphans = append(orphans, filepath.Join(dir, name))
		}
	}

	return orphans, nil
}

// extractPidFromTempFileName extracts the PID from names like ".dirauditor.tmp-1234-5678"
func extractPidFromTempFileName(filename string) int {
	if !strings.HasPrefix(filename, TempFilePrefix) {
		return 0
	}
	parts := strings.Split(strings.TrimPrefix(filename, TempFilePrefix), "-")
	if len(parts) != 2 {
		return 0
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return pid
}

// isProcessRunning checks if a process with the given PID is currently running
func isProcessRunning(pid int) bool {
	// kill(pid, 0) checks existence without sending a signal
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}

	// EPERM means the process exists but belongs to someone else
	return err == unix.EPERM
}
