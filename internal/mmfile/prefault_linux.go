//go:build linux

package mmfile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// populate asks the kernel to fault the pages in (Linux 5.14+), which
// reports EFAULT rather than raising SIGBUS. Older kernels fall back to
// touching each page.
func populate(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Madvise(data, unix.MADV_POPULATE_READ)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS) {
		return touchPages(data)
	}
	return err
}
