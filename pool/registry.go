package pool

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PoolID names an open pool. Ids are indices into the registry and are
// never reused while the registry lives.
type PoolID int

// InvalidPool is returned by Open on failure.
const InvalidPool PoolID = -1

// backing is the delegate state of an open pool. It is published once at
// open and withdrawn at close, so readers that skip the pool lock see either
// a complete value or nil.
type backing struct {
	region   Region
	capacity int64
	base     uintptr
}

// descriptor is one registry entry.
type descriptor struct {
	// mu serializes mutation of the pool. Read-only queries take it shared.
	mu sync.RWMutex

	// life is held shared by durability calls, which skip mu, and exclusively
	// by close, so the mapping is never unmapped under a header read or
	// msync. Lock order: mu before life.
	life sync.RWMutex

	backing atomic.Pointer[backing]
	path    string
}

func newDescriptor(path string, r Region) *descriptor {
	d := &descriptor{path: path}
	d.backing.Store(&backing{
		region:   r,
		capacity: r.Capacity(),
		base:     r.BaseAddress(),
	})
	return d
}

// close closes the delegate once. It reports whether this call did the close.
func (d *descriptor) close() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.life.Lock()
	defer d.life.Unlock()
	b := d.backing.Swap(nil)
	if b == nil {
		return false, nil
	}
	return true, b.region.Close()
}

// Registry is the append-only table of pool descriptors. Descriptors are
// held by pointer so growing the table never moves one a caller is using.
type Registry struct {
	mu    sync.RWMutex
	pools []*descriptor
}

// Len returns the number of ids issued so far, open or closed.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

func (r *Registry) append(d *descriptor) PoolID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools = append(r.pools, d)
	return PoolID(len(r.pools) - 1)
}

func (r *Registry) resolve(id PoolID) (*descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.pools) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPool, id)
	}
	return r.pools[id], nil
}

// reset empties the table and returns the descriptors it held.
func (r *Registry) reset() []*descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	pools := r.pools
	r.pools = nil
	return pools
}
