package pool

import (
	"fmt"

	"github.com/joshuapare/pmemkit/region"
)

// View is a byte slice aliasing an allocation. It stays valid until the
// allocation is freed or resized, or the pool is closed.
type View struct {
	Base uintptr
	Len  int64
	data []byte
}

// Bytes returns the aliased bytes. Writes go straight to the mapping.
func (v View) Bytes() []byte { return v.data }

// IsNull reports whether v refers to nothing.
func (v View) IsNull() bool { return v.Base == 0 }

// CreateView allocates size zeroed bytes in pool id and returns a view of them.
func (m *Manager) CreateView(id PoolID, size int64) (View, error) {
	var v View
	err := m.mutate(id, func(r Region) error {
		addr, err := r.Realloc(0, size, true)
		if err != nil {
			return err
		}
		v, err = wrapView(r, addr, size)
		return err
	})
	if err != nil {
		return View{}, m.allocErr(id, size, err)
	}
	return v, nil
}

// ResizeView resizes the allocation behind v to size bytes and returns a
// view of the result. Added bytes are not cleared. v must not be used
// afterwards.
func (m *Manager) ResizeView(id PoolID, v View, size int64) (View, error) {
	if v.IsNull() {
		return View{}, fmt.Errorf("%w: null view", region.ErrBadHandle)
	}
	var nv View
	err := m.mutate(id, func(r Region) error {
		addr, err := r.Realloc(v.Base, size, false)
		if err != nil {
			return err
		}
		nv, err = wrapView(r, addr, size)
		return err
	})
	if err != nil {
		return View{}, m.allocErr(id, size, err)
	}
	return nv, nil
}

// DestroyView frees the allocation behind v. A null view is ignored.
func (m *Manager) DestroyView(id PoolID, v View) error {
	return m.Free(id, m.AddressOfView(v))
}

// AddressOfView returns the handle of the allocation behind v.
func (m *Manager) AddressOfView(v View) Handle { return Encode(v.Base) }

// RetrieveView wraps the existing allocation h in a view covering its whole
// usable payload, as recorded in its block header. The null handle yields a null view.
func (m *Manager) RetrieveView(id PoolID, h Handle) (View, error) {
	var v View
	err := m.inspect(id, func(r Region) error {
		if h.IsNull() {
			return nil
		}
		addr := Decode(h)
		n, err := r.UsableSize(addr)
		if err != nil {
			return err
		}
		v, err = wrapView(r, addr, n)
		return err
	})
	return v, err
}

func wrapView(r Region, addr uintptr, size int64) (View, error) {
	data, err := r.Bytes(addr, size)
	if err != nil {
		return View{}, err
	}
	return View{Base: addr, Len: size, data: data}, nil
}
