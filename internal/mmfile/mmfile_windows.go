//go:build windows

package mmfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/windows"
)

func lockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, ol,
	)
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return fmt.Errorf("%w: %s", ErrLocked, f.Name())
	}
	return err
}

// mapFile loads the file into memory; ranges are written back on msync.
func mapFile(f *os.File, size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), data); err != nil {
		return nil, err
	}
	return data, nil
}

// unmapFile writes the whole buffer back since nothing aliases the file.
func unmapFile(m *Mapping) error {
	_, err := m.f.WriteAt(m.data, 0)
	return err
}

func (m *Mapping) msync(off, n int64, _ bool) error {
	_, err := m.f.WriteAt(m.data[off:off+n], off)
	return err
}

func datasync(f *os.File) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
