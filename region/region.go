package region

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"

	"github.com/joshuapare/pmemkit/internal/format"
	"github.com/joshuapare/pmemkit/internal/mmfile"
)

// Region is one opened persistent memory region.
type Region struct {
	m        atomic.Pointer[mmfile.Mapping]
	data     []byte
	hdr      *format.RegionHeader
	base     uintptr
	capacity int64
	id       uuid.UUID

	// wasClean records whether the previous session closed the region cleanly.
	wasClean bool

	alloc *allocator
	dirty *tracker
	log   *slog.Logger
}

// Stats is a snapshot of allocator accounting.
type Stats struct {
	Capacity    int64 // Size of the whole region, header page included
	DataSize    int64 // Bytes available to blocks
	Used        int64 // Bytes held by allocated blocks, headers included
	Free        int64 // Bytes held by free blocks
	FreeBlocks  int
	LargestFree int64 // Largest free block, header included
	Allocs      int64
	Frees       int64
	Reallocs    int64
	Failed      int64
}

// Open maps the region file at path. With isNew the file is created (or
// truncated) and formatted with capacity bytes, raised to MinPoolSize and
// rounded up to a whole page. Without isNew the existing region is opened
// and capacity is ignored: the recorded capacity wins.
func Open(path string, capacity int64, isNew bool, opts Options) (*Region, error) {
	log := opts.logger()
	if isNew {
		capacity = format.AlignPageUp(max(capacity, MinPoolSize))
	}

	m, err := mmfile.Open(path, capacity, isNew)
	if err != nil {
		return nil, err
	}
	data := m.Bytes()
	if opts.Prefault {
		if err := m.Prefault(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("%w: %w", ErrBadRegion, err)
		}
	}

	var hdr *format.RegionHeader
	if isNew {
		id := uuid.New()
		hdr, err = format.InitRegionHeader(data, m.Size(), id)
	} else {
		hdr, err = format.ParseRegionHeader(data)
	}
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrBadRegion, path, err)
	}
	// hdr aliases the mapping: read it before any Close.
	if recorded, size := hdr.Capacity(), m.Size(); recorded != size {
		err := fmt.Errorf("%w: %s: header records %d bytes, file has %d",
			ErrBadRegion, path, recorded, size)
		_ = m.Close()
		return nil, err
	}

	r := &Region{
		data:     data,
		hdr:      hdr,
		base:     uintptr(unsafe.Pointer(&data[0])),
		capacity: m.Size(),
		id:       uuid.UUID(hdr.UUID()),
		wasClean: hdr.IsClean(),
		dirty:    newTracker(),
		log:      log,
	}
	r.m.Store(m)

	if !r.wasClean {
		log.Warn("region was not closed cleanly", "path", path, "id", r.id)
	}

	r.alloc, err = newAllocator(data, hdr.DataStart(), r.capacity, opts.SizeClasses, isNew, log)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	hdr.MarkOpen()
	if err := m.Msync(0, format.HeaderSize, false); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("region: write header: %w", err)
	}

	log.Debug("region opened", "path", path, "capacity", r.capacity, "new", isNew, "id", r.id)
	return r, nil
}

// Close records a clean shutdown in the header and unmaps the region.
// Closing twice is a no-op.
func (r *Region) Close() error {
	m := r.m.Swap(nil)
	if m == nil {
		return nil
	}
	r.hdr.MarkClean()
	syncErr := m.Msync(0, format.HeaderSize, false)
	if err := m.Close(); err != nil {
		return err
	}
	r.log.Debug("region closed", "path", m.Path(), "id", r.id)
	return syncErr
}

// Capacity returns the size of the region in bytes, header page included.
func (r *Region) Capacity() int64 { return r.capacity }

// BaseAddress returns the address of the first byte of the mapping.
func (r *Region) BaseAddress() uintptr { return r.base }

// ID returns the UUID stamped when the region was formatted.
func (r *Region) ID() uuid.UUID { return r.id }

// WasClean reports whether the previous session closed the region cleanly.
func (r *Region) WasClean() bool { return r.wasClean }

// offset converts an address inside the mapping to a region offset.
func (r *Region) offset(addr uintptr) (int64, error) {
	if addr < r.base || addr-r.base >= uintptr(r.capacity) {
		return 0, fmt.Errorf("%w: %#x outside region", ErrBadHandle, addr)
	}
	return int64(addr - r.base), nil
}

// payloadOffset converts a payload address to its block header offset.
func (r *Region) payloadOffset(addr uintptr) (int64, error) {
	off, err := r.offset(addr)
	if err != nil {
		return 0, err
	}
	return off - format.BlockHeaderSize, nil
}

// Bytes returns the length bytes of the mapping starting at addr. The slice
// aliases the region and is invalid after Close.
func (r *Region) Bytes(addr uintptr, length int64) ([]byte, error) {
	if r.m.Load() == nil {
		return nil, ErrClosed
	}
	off, err := r.offset(addr)
	if err != nil {
		return nil, err
	}
	if length < 0 || length > r.capacity-off {
		return nil, fmt.Errorf("%w: %d bytes at %#x overruns region", ErrBadHandle, length, addr)
	}
	return r.data[off : off+length : off+length], nil
}

// Realloc allocates, or resizes when addr is non-zero, a block with at least
// size usable bytes and returns its payload address. The returned address
// may differ from addr; addr must not be used afterwards.
func (r *Region) Realloc(addr uintptr, size int64, zero bool) (uintptr, error) {
	if r.m.Load() == nil {
		return 0, ErrClosed
	}
	var (
		off int64
		err error
	)
	if addr == 0 {
		off, err = r.alloc.alloc(size, zero)
	} else {
		off, err = r.payloadOffset(addr)
		if err != nil {
			return 0, err
		}
		off, err = r.alloc.realloc(off, size, zero)
	}
	if err != nil {
		return 0, err
	}
	return r.base + uintptr(off+format.BlockHeaderSize), nil
}

// Free releases the block whose payload starts at addr.
func (r *Region) Free(addr uintptr) error {
	if r.m.Load() == nil {
		return ErrClosed
	}
	off, err := r.payloadOffset(addr)
	if err != nil {
		return err
	}
	return r.alloc.free(off)
}

// UsableSize returns the payload bytes of the allocation at addr.
func (r *Region) UsableSize(addr uintptr) (int64, error) {
	if r.m.Load() == nil {
		return 0, ErrClosed
	}
	off, err := r.payloadOffset(addr)
	if err != nil {
		return 0, err
	}
	blk, err := r.alloc.lookup(off)
	if err != nil {
		return 0, err
	}
	return blk.PayloadSize(), nil
}

// Root returns root slot key, or 0 for a key outside [0, format.RootSlots).
func (r *Region) Root(key int) uint64 {
	if key < 0 || key >= format.RootSlots || r.m.Load() == nil {
		return 0
	}
	return r.hdr.Root(key)
}

// SetRoot stores value in root slot key. Keys outside [0, format.RootSlots)
// are ignored.
func (r *Region) SetRoot(key int, value uint64) {
	if key < 0 || key >= format.RootSlots || r.m.Load() == nil {
		return
	}
	r.hdr.SetRoot(key, value)
}

// Stats returns allocator accounting.
func (r *Region) Stats() Stats {
	free, blocks, largest := r.alloc.freeSummary()
	s := r.alloc.stats
	return Stats{
		Capacity:    r.capacity,
		DataSize:    r.alloc.end - r.alloc.start,
		Used:        s.BytesInUse,
		Free:        free,
		FreeBlocks:  blocks,
		LargestFree: largest,
		Allocs:      s.AllocCalls,
		Frees:       s.FreeCalls,
		Reallocs:    s.ReallocCalls,
		Failed:      s.Failed,
	}
}
