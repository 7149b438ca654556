package region

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/pmemkit/internal/format"
)

// freeBlock is a free block indexed by the allocator.
type freeBlock struct {
	off       int64 // Offset of the block header in the region
	size      int64 // Size including header
	sc        int   // Size class (which heap this belongs to)
	heapIndex int   // Position in heap (for heap.Remove)
}

// freeBlockHeap implements heap.Interface for a min-heap keyed on block size.
// Smallest blocks are at the top, giving best-fit inside a class.
type freeBlockHeap []*freeBlock

func (h *freeBlockHeap) Len() int { return len(*h) }

func (h *freeBlockHeap) Less(i, j int) bool {
	if (*h)[i].size == (*h)[j].size {
		return (*h)[i].off < (*h)[j].off
	}
	return (*h)[i].size < (*h)[j].size
}

func (h *freeBlockHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
	(*h)[i].heapIndex = i
	(*h)[j].heapIndex = j
}

func (h *freeBlockHeap) Push(x any) {
	blk := x.(*freeBlock) //nolint:errcheck // heap.Interface contract guarantees type
	blk.heapIndex = len(*h)
	*h = append(*h, blk)
}

func (h *freeBlockHeap) Pop() any {
	old := *h
	n := len(old)
	blk := old[n-1]
	blk.heapIndex = -1
	*h = old[0 : n-1]
	return blk
}

// allocatorStats holds allocator counters.
type allocatorStats struct {
	AllocCalls   int64
	FreeCalls    int64
	ReallocCalls int64
	InPlaceGrow  int64
	SplitCount   int64
	Coalesced    int64
	Failed       int64
	BytesInUse   int64
}

// allocator carves [start, end) of data into blocks. It stores nothing
// outside the block headers, so it can be rebuilt from the bytes alone.
type allocator struct {
	data       []byte
	start, end int64

	sizeTable *sizeClassTable

	// One heap per size class plus a trailing large list.
	freeLists []freeBlockHeap

	// byOff finds a free block by header offset (forward coalescing, removal).
	// endIdx maps a free block's end offset to its start (backward coalescing).
	byOff  map[int64]*freeBlock
	endIdx map[int64]int64

	freeBlockPool sync.Pool

	stats allocatorStats
	log   *slog.Logger
}

// newAllocator indexes the blocks of data[start:end]. When format is true the
// range is first written as a single free block.
func newAllocator(data []byte, start, end int64, config *SizeClassConfig, fresh bool, log *slog.Logger) (*allocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	table := newSizeClassTable(*config)
	a := &allocator{
		data:      data,
		start:     start,
		end:       end,
		sizeTable: table,
		freeLists: make([]freeBlockHeap, table.numClasses+1),
		byOff:     make(map[int64]*freeBlock, 256),
		endIdx:    make(map[int64]int64, 256),
		freeBlockPool: sync.Pool{
			New: func() any {
				return &freeBlock{}
			},
		},
		log: log,
	}
	if end-start < format.MinBlockSize {
		return nil, fmt.Errorf("%w: data area of %d bytes", ErrBadRegion, end-start)
	}
	if fresh {
		format.PutBlockHeader(a.data, start, end-start, false)
	}
	if err := a.initializeFreeLists(); err != nil {
		return nil, err
	}
	return a, nil
}

// initializeFreeLists walks every block header, merging runs of adjacent free
// blocks left behind by an unclean shutdown.
func (a *allocator) initializeFreeLists() error {
	off := a.start
	runStart, runSize := int64(-1), int64(0)

	flush := func() {
		if runStart >= 0 {
			a.insertFree(runStart, runSize)
			runStart, runSize = -1, 0
		}
	}

	for off < a.end {
		blk, next, err := format.NextBlock(a.data[:a.end], off)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadRegion, err)
		}
		if blk.Free {
			if runStart < 0 {
				runStart = off
			} else {
				format.ClearBlockHeader(a.data, off)
			}
			runSize += blk.Size
		} else {
			flush()
			a.stats.BytesInUse += blk.Size
		}
		off = next
	}
	flush()
	return nil
}

// blockSize converts a payload request into an aligned block size.
func blockSize(payload int64) (int64, bool) {
	if payload < 0 || payload > 1<<62 {
		return 0, false
	}
	need := format.AlignBlock(payload + format.BlockHeaderSize)
	return max(need, format.MinBlockSize), true
}

// alloc returns the header offset of a new allocated block with at least
// payload usable bytes.
func (a *allocator) alloc(payload int64, zero bool) (int64, error) {
	a.stats.AllocCalls++
	need, ok := blockSize(payload)
	if !ok {
		a.stats.Failed++
		return 0, fmt.Errorf("%w: request of %d bytes", ErrNoSpace, payload)
	}

	blk := a.takeFit(need)
	if blk == nil {
		a.stats.Failed++
		if logAlloc {
			a.log.Debug("alloc failed", "need", need, "free_blocks", len(a.byOff))
		}
		return 0, fmt.Errorf("%w: need %d bytes", ErrNoSpace, need)
	}
	off, size := blk.off, blk.size
	a.putFreeBlock(blk)

	size = a.splitAllocated(off, size, need)
	a.stats.BytesInUse += size
	if zero {
		clear(a.data[off+format.BlockHeaderSize : off+size])
	}
	return off, nil
}

// splitAllocated marks [off, off+size) allocated with need bytes, returning
// the tail to the free lists when it can form a block of its own. Returns
// the final allocated size.
func (a *allocator) splitAllocated(off, size, need int64) int64 {
	rem := size - need
	if rem >= format.MinBlockSize {
		a.stats.SplitCount++
		format.PutBlockHeader(a.data, off, need, true)
		a.releaseRange(off+need, rem)
		return need
	}
	format.PutBlockHeader(a.data, off, size, true)
	return size
}

// lookup validates that off is the header of an allocated block.
func (a *allocator) lookup(off int64) (format.Block, error) {
	if off < a.start || off >= a.end || off&format.BlockAlignmentMask != 0 {
		return format.Block{}, fmt.Errorf("%w: offset %#x outside data area", ErrBadHandle, off)
	}
	blk, err := format.ReadBlock(a.data[:a.end], off)
	if err != nil {
		return format.Block{}, fmt.Errorf("%w: %w", ErrBadHandle, err)
	}
	if blk.Free {
		return format.Block{}, fmt.Errorf("%w: offset %#x", ErrDoubleFree, off)
	}
	return blk, nil
}

// free releases the allocated block at off, coalescing with free neighbours.
func (a *allocator) free(off int64) error {
	a.stats.FreeCalls++
	blk, err := a.lookup(off)
	if err != nil {
		return err
	}
	a.stats.BytesInUse -= blk.Size
	a.releaseRange(off, blk.Size)
	return nil
}

// realloc resizes the allocated block at off to hold payload bytes. The block
// is resized in place when it already fits or when the following block is
// free and large enough; otherwise a new block is allocated, the common
// prefix copied and the old block freed. With zero, bytes past the old
// usable size are cleared.
func (a *allocator) realloc(off, payload int64, zero bool) (int64, error) {
	a.stats.ReallocCalls++
	blk, err := a.lookup(off)
	if err != nil {
		return 0, err
	}
	need, ok := blockSize(payload)
	if !ok {
		a.stats.Failed++
		return 0, fmt.Errorf("%w: request of %d bytes", ErrNoSpace, payload)
	}

	if need <= blk.Size {
		size := a.splitAllocated(off, blk.Size, need)
		a.stats.BytesInUse -= blk.Size - size
		return off, nil
	}

	// Try to grow into a free successor.
	next := off + blk.Size
	if fb, ok := a.byOff[next]; ok && blk.Size+fb.size >= need {
		a.stats.InPlaceGrow++
		total := blk.Size + fb.size
		a.removeFree(fb)
		format.ClearBlockHeader(a.data, next)
		size := a.splitAllocated(off, total, need)
		a.stats.BytesInUse += size - blk.Size
		if zero {
			clear(a.data[off+blk.Size : off+size])
		}
		return off, nil
	}

	newOff, err := a.alloc(payload, false)
	if err != nil {
		return 0, err
	}
	oldPayload := blk.PayloadSize()
	copy(a.data[newOff+format.BlockHeaderSize:newOff+format.BlockHeaderSize+oldPayload],
		a.data[off+format.BlockHeaderSize:off+blk.Size])
	if zero {
		nb, _ := format.ReadBlock(a.data[:a.end], newOff)
		clear(a.data[newOff+format.BlockHeaderSize+oldPayload : newOff+nb.Size])
	}
	a.stats.BytesInUse -= blk.Size
	a.releaseRange(off, blk.Size)
	return newOff, nil
}

// releaseRange turns [off, off+size) into a free block, merging it with a
// free block directly before or after it.
func (a *allocator) releaseRange(off, size int64) {
	next := off + size
	if fb, ok := a.byOff[next]; ok {
		a.stats.Coalesced++
		size += fb.size
		a.removeFree(fb)
		format.ClearBlockHeader(a.data, next)
	}
	if prevOff, ok := a.endIdx[off]; ok {
		a.stats.Coalesced++
		prev := a.byOff[prevOff]
		size += prev.size
		a.removeFree(prev)
		format.ClearBlockHeader(a.data, off)
		off = prevOff
	}
	a.insertFree(off, size)
}

// insertFree writes a free header and indexes the block.
func (a *allocator) insertFree(off, size int64) {
	format.PutBlockHeader(a.data, off, size, false)
	fb := a.getFreeBlock()
	fb.off = off
	fb.size = size
	fb.sc = a.sizeTable.getSizeClass(size)
	heap.Push(&a.freeLists[fb.sc], fb)
	a.byOff[off] = fb
	a.endIdx[off+size] = off
}

// removeFree unindexes fb and returns it to the pool. The header is left for
// the caller to overwrite.
func (a *allocator) removeFree(fb *freeBlock) {
	heap.Remove(&a.freeLists[fb.sc], fb.heapIndex)
	delete(a.byOff, fb.off)
	delete(a.endIdx, fb.off+fb.size)
	a.putFreeBlock(fb)
}

// takeFit removes and returns the smallest free block of at least need bytes,
// or nil. The returned block is detached from every index.
func (a *allocator) takeFit(need int64) *freeBlock {
	for sc := a.sizeTable.getSizeClass(need); sc < len(a.freeLists); sc++ {
		h := &a.freeLists[sc]
		if h.Len() == 0 {
			continue
		}
		var best *freeBlock
		if (*h)[0].size >= need {
			best = (*h)[0]
		} else {
			// Only the class holding need (or the large list) can mix
			// blocks on both sides of it.
			for _, fb := range *h {
				if fb.size >= need && (best == nil || fb.size < best.size) {
					best = fb
				}
			}
		}
		if best == nil {
			continue
		}
		heap.Remove(h, best.heapIndex)
		delete(a.byOff, best.off)
		delete(a.endIdx, best.off+best.size)
		return best
	}
	return nil
}

func (a *allocator) getFreeBlock() *freeBlock {
	fb := a.freeBlockPool.Get().(*freeBlock) //nolint:errcheck // pool only holds *freeBlock
	*fb = freeBlock{}
	return fb
}

func (a *allocator) putFreeBlock(fb *freeBlock) {
	a.freeBlockPool.Put(fb)
}

// freeSummary returns the free byte count, the number of free blocks and the
// largest free block.
func (a *allocator) freeSummary() (total int64, count int, largest int64) {
	for _, fb := range a.byOff {
		total += fb.size
		count++
		largest = max(largest, fb.size)
	}
	return total, count, largest
}
