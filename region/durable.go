package region

import (
	"context"
	"fmt"

	"github.com/joshuapare/pmemkit/internal/format"
)

// Durability is the guarantee requested from MakeDurable, weakest first.
type Durability int

const (
	// LevelFlush schedules write-back of the pages (asynchronous msync) and
	// remembers them so a later Drain can wait for them.
	LevelFlush Durability = iota

	// LevelSync writes the pages back synchronously (msync MS_SYNC).
	LevelSync

	// LevelPersist writes the pages back and flushes the device
	// (msync + fdatasync, F_FULLFSYNC on macOS).
	LevelPersist
)

// String returns the level name.
func (d Durability) String() string {
	switch d {
	case LevelFlush:
		return "flush"
	case LevelSync:
		return "sync"
	case LevelPersist:
		return "persist"
	default:
		return fmt.Sprintf("Durability(%d)", int(d))
	}
}

// MakeDurable pushes [addr, addr+length) to storage at the requested level.
// The range is widened to page boundaries and clipped to the region.
func (r *Region) MakeDurable(addr uintptr, length int64, level Durability) error {
	m := r.m.Load()
	if m == nil {
		return ErrClosed
	}
	if length <= 0 {
		return nil
	}
	off, err := r.offset(addr)
	if err != nil {
		return err
	}
	start := format.AlignPageDown(off)
	end := min(format.AlignPageUp(off+length), r.capacity)
	n := end - start

	switch level {
	case LevelFlush:
		r.dirty.add(start, n)
		return m.Msync(start, n, true)
	case LevelSync:
		return m.Msync(start, n, false)
	case LevelPersist:
		if err := m.Msync(start, n, false); err != nil {
			return err
		}
		return m.Datasync()
	default:
		return fmt.Errorf("region: unknown durability level %d", int(level))
	}
}

// Drain synchronously writes back every range made durable at LevelFlush
// since the previous drain, then flushes the device.
func (r *Region) Drain() error {
	return r.DrainContext(context.Background())
}

// DrainContext is Drain with cancellation between ranges. If cancelled during
// the drain some ranges may have been written while others have not; the
// unwritten ones are not retried.
func (r *Region) DrainContext(ctx context.Context) error {
	m := r.m.Load()
	if m == nil {
		return ErrClosed
	}
	ranges := r.dirty.take()
	if len(ranges) == 0 {
		return nil
	}
	for _, rg := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(rg.Off+rg.Len, r.capacity)
		if err := m.Msync(rg.Off, end-rg.Off, false); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Datasync()
}

// PendingRanges returns the page-aligned ranges a Drain would write back.
func (r *Region) PendingRanges() []Range {
	return r.dirty.pending()
}
