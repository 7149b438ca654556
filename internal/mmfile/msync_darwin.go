//go:build darwin

package mmfile

import (
	"golang.org/x/sys/unix"
)

// msync on macOS requires the address to match the original mmap() address,
// so sub-slices are not accepted. Sync the whole mapping; the kernel only
// writes pages that are actually dirty.
func (m *Mapping) msync(_, _ int64, async bool) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	return unix.Msync(m.data, flags)
}

// fdatasync uses F_FULLFSYNC so data reaches the physical disk, not just the
// drive cache. macOS has no fdatasync.
func fdatasync(fd int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
	if err != nil {
		return unix.Fsync(fd)
	}
	return nil
}
