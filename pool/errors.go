package pool

import "errors"

var (
	// ErrPoolInit indicates that a pool could not be opened. The delegate's
	// error is wrapped alongside it.
	ErrPoolInit = errors.New("pool: initialization failed")

	// ErrOutOfMemory indicates that an allocation could not be satisfied.
	ErrOutOfMemory = errors.New("pool: out of memory")

	// ErrUnknownPool indicates a pool id that was never issued.
	ErrUnknownPool = errors.New("pool: unknown pool id")

	// ErrPoolClosed indicates an operation on a pool that has been closed.
	ErrPoolClosed = errors.New("pool: pool closed")
)
