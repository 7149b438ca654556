package region

import (
	"sort"
	"sync"

	"github.com/joshuapare/pmemkit/internal/format"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// Range is a byte range relative to the start of the region.
type Range struct {
	Off int64
	Len int64
}

// tracker accumulates ranges made durable at LevelFlush so Drain can write
// them back synchronously. Safe for concurrent use.
type tracker struct {
	mu       sync.Mutex
	ranges   []Range // Raw ranges, coalesced when taken
	pageSize int64
}

func newTracker() *tracker {
	return &tracker{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: format.PageSize,
	}
}

// add records a dirty range.
func (t *tracker) add(off, length int64) {
	t.mu.Lock()
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
	t.mu.Unlock()
}

// take returns the coalesced ranges and clears the tracker.
func (t *tracker) take() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	merged := coalesce(t.ranges, t.pageSize)
	t.ranges = t.ranges[:0]
	return merged
}

// pending returns the coalesced ranges without clearing them.
func (t *tracker) pending() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	return coalesce(t.ranges, t.pageSize)
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ranges. Returns a new slice of non-overlapping, sorted ranges.
func coalesce(ranges []Range, pageSize int64) []Range {
	if len(ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(ranges))
	for i, r := range ranges {
		start := (r.Off / pageSize) * pageSize
		end := r.Off + r.Len
		if end%pageSize != 0 {
			end = ((end / pageSize) + 1) * pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}
	return append(merged, current)
}
