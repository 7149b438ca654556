package pool

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/joshuapare/pmemkit/internal/format"
	"github.com/joshuapare/pmemkit/region"
)

// durableCall is one MakeDurable invocation seen by fakeRegion.
type durableCall struct {
	addr   uintptr
	length int64
	level  region.Durability
}

// fakeRegion is a heap-backed bump allocator that records durability calls.
// Blocks use the real header layout so blockHeader can read them back.
type fakeRegion struct {
	mu       sync.Mutex
	buf      []byte
	base     uintptr
	next     int64
	roots    [format.RootSlots]uint64
	calls    []durableCall
	drains   int
	closed   bool
	closeErr error
}

// fakeFirstBlock leaves a gap before the first block so that a whole-pool
// range and a first-block range never coincide.
const fakeFirstBlock = 64

func newFakeRegion(capacity int64) *fakeRegion {
	buf := make([]byte, capacity)
	return &fakeRegion{
		buf:  buf,
		base: uintptr(unsafe.Pointer(&buf[0])),
		next: fakeFirstBlock,
	}
}

func (f *fakeRegion) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeRegion) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeRegion) Capacity() int64      { return int64(len(f.buf)) }
func (f *fakeRegion) BaseAddress() uintptr { return f.base }

func (f *fakeRegion) block(addr uintptr) (format.Block, error) {
	if addr < f.base+format.BlockHeaderSize || addr >= f.base+uintptr(len(f.buf)) {
		return format.Block{}, region.ErrBadHandle
	}
	blk, err := format.ReadBlock(f.buf, int64(addr-f.base)-format.BlockHeaderSize)
	if err != nil {
		return format.Block{}, fmt.Errorf("%w: %w", region.ErrBadHandle, err)
	}
	if blk.Free {
		return format.Block{}, region.ErrDoubleFree
	}
	return blk, nil
}

func (f *fakeRegion) Realloc(addr uintptr, size int64, zero bool) (uintptr, error) {
	var old format.Block
	if addr != 0 {
		var err error
		if old, err = f.block(addr); err != nil {
			return 0, err
		}
	}
	need := max(format.AlignBlock(size+format.BlockHeaderSize), format.MinBlockSize)
	if size < 0 || f.next+need > int64(len(f.buf)) {
		return 0, fmt.Errorf("%w: fake region exhausted", region.ErrNoSpace)
	}
	off := f.next
	f.next += need
	format.PutBlockHeader(f.buf, off, need, true)
	payload := f.buf[off+format.BlockHeaderSize : off+need]
	if zero {
		clear(payload)
	}
	if addr != 0 {
		copy(payload, f.buf[old.Offset+format.BlockHeaderSize:old.Offset+old.Size])
		format.PutBlockHeader(f.buf, old.Offset, old.Size, false)
	}
	return f.base + uintptr(off+format.BlockHeaderSize), nil
}

func (f *fakeRegion) Free(addr uintptr) error {
	blk, err := f.block(addr)
	if err != nil {
		return err
	}
	format.PutBlockHeader(f.buf, blk.Offset, blk.Size, false)
	return nil
}

func (f *fakeRegion) UsableSize(addr uintptr) (int64, error) {
	blk, err := f.block(addr)
	if err != nil {
		return 0, err
	}
	return blk.PayloadSize(), nil
}

func (f *fakeRegion) MakeDurable(addr uintptr, length int64, level region.Durability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, durableCall{addr: addr, length: length, level: level})
	return nil
}

func (f *fakeRegion) durableCalls() []durableCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]durableCall(nil), f.calls...)
}

func (f *fakeRegion) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drains++
	return nil
}

func (f *fakeRegion) Root(key int) uint64           { return f.roots[key] }
func (f *fakeRegion) SetRoot(key int, value uint64) { f.roots[key] = value }

func (f *fakeRegion) Bytes(addr uintptr, length int64) ([]byte, error) {
	if addr < f.base || length < 0 || int64(addr-f.base)+length > int64(len(f.buf)) {
		return nil, region.ErrBadHandle
	}
	off := int64(addr - f.base)
	return f.buf[off : off+length], nil
}

func (f *fakeRegion) Stats() region.Stats {
	return region.Stats{Capacity: int64(len(f.buf)), Used: f.next - fakeFirstBlock}
}

// fakeBackend hands out fakeRegions and remembers the capacity each path was
// created with, so reopening behaves like a persisted region.
type fakeBackend struct {
	mu      sync.Mutex
	sizes   map[string]int64
	regions map[string]*fakeRegion
	err     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sizes:   make(map[string]int64),
		regions: make(map[string]*fakeRegion),
	}
}

func (b *fakeBackend) Open(path string, capacity int64, isNew bool) (Region, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	if !isNew {
		c, ok := b.sizes[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		capacity = c
	}
	b.sizes[path] = capacity
	r := newFakeRegion(capacity)
	b.regions[path] = r
	return r, nil
}

func (b *fakeBackend) region(path string) *fakeRegion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regions[path]
}
