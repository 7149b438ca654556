package pool

import (
	"errors"
	"fmt"

	"github.com/joshuapare/pmemkit/region"
)

// Allocate returns a new allocation of at least size bytes from pool id.
// With zero the payload is zero-filled.
func (m *Manager) Allocate(id PoolID, size int64, zero bool) (Handle, error) {
	var addr uintptr
	err := m.mutate(id, func(r Region) error {
		var err error
		addr, err = r.Realloc(0, size, zero)
		return err
	})
	if err != nil {
		return InvalidHandle, m.allocErr(id, size, err)
	}
	return Encode(addr), nil
}

// Reallocate resizes the allocation h to size bytes and returns its handle,
// which may differ from h. The first min(old, new) bytes are preserved; with
// zero any added bytes are zero-filled. The null handle allocates. On
// failure h is left untouched.
func (m *Manager) Reallocate(id PoolID, h Handle, size int64, zero bool) (Handle, error) {
	var addr uintptr
	err := m.mutate(id, func(r Region) error {
		var err error
		addr, err = r.Realloc(Decode(h), size, zero)
		return err
	})
	if err != nil {
		return InvalidHandle, m.allocErr(id, size, err)
	}
	return Encode(addr), nil
}

// Free releases the allocation h. The null handle is ignored.
func (m *Manager) Free(id PoolID, h Handle) error {
	return m.mutate(id, func(r Region) error {
		if h.IsNull() {
			return nil
		}
		return r.Free(Decode(h))
	})
}

// SizeOf returns the usable payload size of allocation h, which is at least
// the size requested. The null handle has size 0.
func (m *Manager) SizeOf(id PoolID, h Handle) (int64, error) {
	var n int64
	err := m.inspect(id, func(r Region) error {
		if h.IsNull() {
			return nil
		}
		var err error
		n, err = r.UsableSize(Decode(h))
		return err
	})
	return n, err
}

func (m *Manager) allocErr(id PoolID, size int64, err error) error {
	if errors.Is(err, region.ErrNoSpace) {
		m.log.Debug("allocation failed", "id", id, "size", size)
		return fmt.Errorf("%w: pool %d: %w", ErrOutOfMemory, id, err)
	}
	return err
}
