// Package mmfile provides platform-specific helpers for memory-mapping region
// files read/write, holding an exclusive lock on them for the lifetime of the
// mapping and pushing modified ranges back to stable storage.
package mmfile

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrLocked indicates another open mapping already holds the file.
	ErrLocked = errors.New("mmfile: file is locked by another mapping")

	// ErrEmpty indicates an existing file has no content to map.
	ErrEmpty = errors.New("mmfile: empty file")

	// ErrClosed indicates the mapping was already released.
	ErrClosed = errors.New("mmfile: mapping closed")
)

// Mapping is a read/write view of a whole file. On unix platforms the bytes
// alias the page cache through a shared mapping; elsewhere they are an
// in-memory copy written back on Msync.
type Mapping struct {
	f    *os.File
	data []byte
	path string
}

// Open maps the file at path. When create is true the file is created if
// missing and truncated to exactly size bytes (its previous content is
// discarded); otherwise the existing file is mapped at its current size and
// size is ignored.
func Open(path string, size int64, create bool) (*Mapping, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, err
	}

	// Lock before touching the content so a file held elsewhere is never truncated.
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	if create {
		if err := CheckFreeSpace(path, size); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.Truncate(0); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmfile: truncate: %w", err)
		}
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmfile: extend to %d bytes: %w", size, err)
		}
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if sz > int64(^uint(0)>>1) {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", sz)
	}

	data, err := mapFile(f, sz)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Mapping{f: f, data: data, path: path}, nil
}

// Bytes returns the mapped content. The slice is invalid after Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Size returns the mapped length.
func (m *Mapping) Size() int64 { return int64(len(m.data)) }

// Path returns the file the mapping was opened from.
func (m *Mapping) Path() string { return m.path }

// Msync writes [off, off+n) back to the file. Callers pass page-aligned
// ranges; async requests only schedule the write-back where the platform
// supports it.
func (m *Mapping) Msync(off, n int64, async bool) error {
	if m.data == nil {
		return ErrClosed
	}
	if off < 0 || n <= 0 || off+n > int64(len(m.data)) {
		return fmt.Errorf("mmfile: msync range [%d, %d) outside mapping of %d bytes", off, off+n, len(m.data))
	}
	return m.msync(off, n, async)
}

// Datasync flushes file data to the device.
func (m *Mapping) Datasync() error {
	if m.f == nil {
		return ErrClosed
	}
	return datasync(m.f)
}

// Close unmaps the file and releases the lock. Closing twice is a no-op.
func (m *Mapping) Close() error {
	var err error
	if m.data != nil {
		err = unmapFile(m)
		m.data = nil
	}
	if m.f != nil {
		// Closing the descriptor also drops the lock.
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}
