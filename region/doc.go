// Package region implements a file-backed persistent memory region: a fixed
// capacity file mapped into the address space, carved into blocks by a
// segregated free-list allocator, with a small array of root slots in the
// header page and primitives to push ranges to durable media.
//
// # Layout
//
// The first 4 KiB of the file is the region header (see internal/format):
// signature, capacity, clean-shutdown sequence numbers, a UUID stamped when
// the region is formatted, and 255 root slots. Blocks tile the rest of the
// file. Each block starts with a 16-byte header whose first field is a signed
// size: negative for allocated blocks, positive for free ones.
//
//	+-----------------+--------+---------+--------+---------+-----
//	| header page     | hdr|payload      | hdr|free         | ...
//	+-----------------+--------+---------+--------+---------+-----
//	0               4096
//
// # Allocation
//
// Free blocks are indexed by size class, each class a min-heap keyed on block
// size, giving best-fit within a class. Freed blocks coalesce with free
// neighbours on both sides. The free lists are rebuilt by scanning block
// headers whenever a region is opened, so nothing but the headers needs to be
// persisted.
//
//	r, err := region.Open(path, 64<<20, true, region.Options{})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	addr, err := r.Realloc(0, 256, true)
//	buf, _ := r.Bytes(addr, 256)
//	copy(buf, payload)
//	_ = r.MakeDurable(addr, 256, region.LevelPersist)
//
// # Addresses
//
// Allocations are identified by the native address of their payload inside
// the mapping. The region never remaps, so addresses stay valid until the
// block is freed or the region is closed.
//
// # Thread Safety
//
// Allocation, free, resize and root slot writes are not thread-safe; callers
// serialize them per region (the pool package holds a per-pool mutex).
// MakeDurable and Drain may run concurrently with each other and with
// allocation traffic.
package region
