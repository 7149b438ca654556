// Package pool manages a process-wide set of persistent memory pools.
//
// A pool is a region of a memory-mapped file carved into allocations by a
// delegate allocator (see package region). A Manager opens pools by path and
// hands back small integer ids; all later operations name the pool by id and
// the allocation by a Handle, the numeric form of the allocation's native
// address.
//
// # Operations
//
//   - Open / Close / Shutdown: register and release pools.
//   - Allocate / Reallocate / Free / SizeOf: allocation lifecycle.
//   - Flush / Sync / Persist / Drain: push allocations (or whole pools) to
//     storage at increasing strength.
//   - SetRoot / Root: a fixed array of persistent uint64 slots per pool used
//     to find data again after a restart.
//   - CreateView / ResizeView / DestroyView / RetrieveView: zero-copy byte
//     slices aliasing an allocation.
//
// # Concurrency
//
// A Manager is safe for concurrent use. Locking is two-tiered: a registry
// RWMutex guards the id table and each pool has its own RWMutex that
// serializes mutations of that pool. Operations on different pools never
// contend beyond the brief registry read lock.
//
// Flush, Sync, Persist and Drain do not take the pool lock by default. A
// durability call that races with a Reallocate or Free of the same handle
// may read a stale block header; set Options.StrictDurability to take the
// pool lock in shared mode instead. Close waits for in-flight durability
// calls on the pool, so they finish or report ErrPoolClosed.
//
// # Errors
//
// Out-of-range ids, closed pools and handles that do not name a live
// allocation are reported as errors (ErrUnknownPool, ErrPoolClosed,
// region.ErrBadHandle, region.ErrDoubleFree). The null handle is always
// accepted: Free ignores it, SizeOf reports 0, and durability calls without
// autodetect do nothing. Root slot keys outside [0, SlotCapacity()) are
// ignored by SetRoot and read as 0 by Root.
package pool
