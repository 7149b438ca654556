package pool

import (
	"github.com/joshuapare/pmemkit/region"
)

// Region is the delegate allocator behind one open pool. Addresses are
// payload addresses; the block header sits format.BlockHeaderSize bytes
// before each one.
type Region interface {
	Close() error
	Capacity() int64
	BaseAddress() uintptr

	// Realloc allocates when addr is 0 and resizes otherwise.
	Realloc(addr uintptr, size int64, zero bool) (uintptr, error)
	Free(addr uintptr) error
	UsableSize(addr uintptr) (int64, error)

	MakeDurable(addr uintptr, length int64, level region.Durability) error
	Drain() error

	Root(key int) uint64
	SetRoot(key int, value uint64)

	// Bytes returns the mapped bytes [addr, addr+length), bounds checked.
	Bytes(addr uintptr, length int64) ([]byte, error)
	Stats() region.Stats
}

// Backend opens regions.
type Backend interface {
	Open(path string, capacity int64, isNew bool) (Region, error)
}

// FileBackend opens file-backed regions with region.Open.
type FileBackend struct {
	Options region.Options
}

var _ Region = (*region.Region)(nil)

// Open implements Backend.
func (b FileBackend) Open(path string, capacity int64, isNew bool) (Region, error) {
	r, err := region.Open(path, capacity, isNew, b.Options)
	if err != nil {
		return nil, err
	}
	return r, nil
}
