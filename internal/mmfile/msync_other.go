//go:build unix && !linux && !freebsd && !darwin

package mmfile

import (
	"golang.org/x/sys/unix"
)

func (m *Mapping) msync(off, n int64, async bool) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	return unix.Msync(m.data[off:off+n], flags)
}

// fdatasync falls back to fsync where fdatasync is not exposed.
func fdatasync(fd int) error {
	return unix.Fsync(fd)
}
