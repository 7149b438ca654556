package pool

import (
	"fmt"

	"github.com/joshuapare/pmemkit/internal/format"
	"github.com/joshuapare/pmemkit/region"
)

// Flush schedules write-back of an allocation or range (see durable). It is
// the weakest level; Drain waits for everything flushed so far.
func (m *Manager) Flush(id PoolID, h Handle, length int64, autodetect bool) error {
	return m.durable(id, h, length, autodetect, region.LevelFlush)
}

// Sync writes an allocation or range back synchronously.
func (m *Manager) Sync(id PoolID, h Handle, length int64, autodetect bool) error {
	return m.durable(id, h, length, autodetect, region.LevelSync)
}

// Persist writes an allocation or range back and flushes the device.
func (m *Manager) Persist(id PoolID, h Handle, length int64, autodetect bool) error {
	return m.durable(id, h, length, autodetect, region.LevelPersist)
}

// Drain waits for every range flushed in pool id since the last drain.
func (m *Manager) Drain(id PoolID) error {
	d, err := m.reg.resolve(id)
	if err != nil {
		return err
	}
	if m.opts.StrictDurability {
		d.mu.RLock()
		defer d.mu.RUnlock()
	}
	d.life.RLock()
	defer d.life.RUnlock()
	b := d.backing.Load()
	if b == nil {
		return fmt.Errorf("%w: %d", ErrPoolClosed, id)
	}
	return b.region.Drain()
}

// durable selects the range to make durable:
//
//   - autodetect with a handle: the whole block, header included, with the
//     size read back from the block header
//   - autodetect with the null handle: the whole pool
//   - otherwise [h, h+length), or nothing if h is null or length <= 0
func (m *Manager) durable(id PoolID, h Handle, length int64, autodetect bool, level region.Durability) error {
	d, err := m.reg.resolve(id)
	if err != nil {
		return err
	}
	if m.opts.StrictDurability {
		d.mu.RLock()
		defer d.mu.RUnlock()
	}
	d.life.RLock()
	defer d.life.RUnlock()
	b := d.backing.Load()
	if b == nil {
		return fmt.Errorf("%w: %d", ErrPoolClosed, id)
	}

	addr := Decode(h)
	switch {
	case autodetect && addr != 0:
		hdr, total, err := blockHeader(b.region, addr)
		if err != nil {
			return err
		}
		return b.region.MakeDurable(hdr, total, level)
	case autodetect:
		return b.region.MakeDurable(b.base, b.capacity, level)
	case addr == 0 || length <= 0:
		return nil
	default:
		return b.region.MakeDurable(addr, length, level)
	}
}

// blockHeader returns the header address and total block size of the
// allocation whose payload starts at addr. It is the only code that steps
// back from a payload to its header, and it reads through Region.Bytes so a
// foreign address fails the bounds or signature check rather than faulting.
func blockHeader(r Region, addr uintptr) (uintptr, int64, error) {
	if addr < format.BlockHeaderSize {
		return 0, 0, fmt.Errorf("%w: %#x", region.ErrBadHandle, addr)
	}
	hdr := addr - format.BlockHeaderSize
	raw, err := r.Bytes(hdr, format.BlockHeaderSize)
	if err != nil {
		return 0, 0, err
	}
	blk, err := format.ParseBlockHeader(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %#x: %w", region.ErrBadHandle, addr, err)
	}
	return hdr, blk.Size, nil
}
