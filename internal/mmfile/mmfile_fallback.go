//go:build !unix && !windows

package mmfile

import (
	"io"
	"os"
)

func lockFile(_ *os.File) error { return nil }

// mapFile reads the entire file when mmap is not available.
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
	return f.Sync()
}
