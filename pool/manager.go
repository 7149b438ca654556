package pool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/pmemkit/region"
)

// Manager is the pool service. The zero value is not usable; call New.
type Manager struct {
	reg  *Registry
	opts Options
	log  *slog.Logger
}

// New returns a Manager with an empty registry.
func New(opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		reg:  &Registry{},
		opts: opts,
		log:  opts.Logger,
	}
}

// Open opens (isNew false) or creates (isNew true) the region at path and
// registers it as a new pool. Capacity is raised to Options.MinPoolSize; the
// pool's actual capacity is whatever the backend reports.
//
// The backend is called without holding any registry lock, so a slow open
// does not block operations on other pools.
func (m *Manager) Open(capacity int64, path string, isNew bool) (PoolID, error) {
	if path == "" {
		return InvalidPool, fmt.Errorf("%w: pathname not specified", ErrPoolInit)
	}
	capacity = max(capacity, m.opts.MinPoolSize)

	r, err := m.opts.Backend.Open(path, capacity, isNew)
	if err != nil {
		return InvalidPool, fmt.Errorf("%w: %s: %w", ErrPoolInit, path, err)
	}

	d := newDescriptor(path, r)
	id := m.reg.append(d)
	m.log.Info("pool opened", "id", id, "path", path, "capacity", r.Capacity(), "new", isNew)
	return id, nil
}

// Close closes pool id. The id stays allocated; later operations on it
// return ErrPoolClosed. Closing a closed pool is a no-op.
func (m *Manager) Close(id PoolID) error {
	d, err := m.reg.resolve(id)
	if err != nil {
		return err
	}
	closed, err := d.close()
	if closed {
		m.log.Info("pool closed", "id", id, "path", d.path)
	}
	if err != nil {
		return fmt.Errorf("pool %d: %w", id, err)
	}
	return nil
}

// Shutdown closes every open pool in id order and empties the registry.
// Every pool is visited even if some fail to close; the failures are joined.
// Callers must ensure no other operation is in flight.
func (m *Manager) Shutdown() error {
	pools := m.reg.reset()
	var errs []error
	open := 0
	for i, d := range pools {
		closed, err := d.close()
		if closed {
			open++
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("pool %d (%s): %w", i, d.path, err))
		}
	}
	m.log.Info("pool manager shut down", "pools", len(pools), "closed", open)
	return errors.Join(errs...)
}

// Len returns the number of ids issued since New or the last Shutdown.
func (m *Manager) Len() int { return m.reg.Len() }

// Capacity returns the capacity cached when the pool was opened.
func (m *Manager) Capacity(id PoolID) (int64, error) {
	b, err := m.backing(id)
	if err != nil {
		return 0, err
	}
	return b.capacity, nil
}

// BaseAddress returns the address of the first byte of the pool's mapping.
func (m *Manager) BaseAddress(id PoolID) (uintptr, error) {
	b, err := m.backing(id)
	if err != nil {
		return 0, err
	}
	return b.base, nil
}

// Stats returns the allocator accounting of pool id.
func (m *Manager) Stats(id PoolID) (region.Stats, error) {
	var s region.Stats
	err := m.inspect(id, func(r Region) error {
		s = r.Stats()
		return nil
	})
	return s, err
}

// backing resolves id without taking the pool lock.
func (m *Manager) backing(id PoolID) (*backing, error) {
	d, err := m.reg.resolve(id)
	if err != nil {
		return nil, err
	}
	b := d.backing.Load()
	if b == nil {
		return nil, fmt.Errorf("%w: %d", ErrPoolClosed, id)
	}
	return b, nil
}

// mutate runs fn with the pool lock held exclusively.
func (m *Manager) mutate(id PoolID, fn func(Region) error) error {
	d, err := m.reg.resolve(id)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.backing.Load()
	if b == nil {
		return fmt.Errorf("%w: %d", ErrPoolClosed, id)
	}
	return fn(b.region)
}

// inspect runs fn with the pool lock held shared.
func (m *Manager) inspect(id PoolID, fn func(Region) error) error {
	d, err := m.reg.resolve(id)
	if err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	b := d.backing.Load()
	if b == nil {
		return fmt.Errorf("%w: %d", ErrPoolClosed, id)
	}
	return fn(b.region)
}
