package dirauditor

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncDir flushes directory metadata so a completed rename survives a crash
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := unix.Fsync(int(d.Fd())); err != nil {
		// Some filesystems do not support fsync on directories
		if err == unix.EINVAL || err == unix.ENOTSUP {
			return nil
		}
		return err
	}
	return nil
}
