//go:build darwin || freebsd

package dirauditor

import "golang.org/x/sys/unix"

// ufHidden is UF_HIDDEN from sys/stat.h, identical on darwin and freebsd
const ufHidden = 0x00008000

// markHidden sets the hidden flag on path, keeping any flags already set
func markHidden(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return err
	}
	if st.Flags&ufHidden != 0 {
		return nil
	}
	return unix.Chflags(path, int(st.Flags|ufHidden))
}
