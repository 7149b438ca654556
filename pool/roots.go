package pool

import "github.com/joshuapare/pmemkit/internal/format"

// SlotCapacity returns the number of root slots in every pool.
func SlotCapacity() int { return format.RootSlots }

// SetRoot stores value in root slot key of pool id. Keys outside
// [0, SlotCapacity()) are ignored.
func (m *Manager) SetRoot(id PoolID, key int, value uint64) error {
	return m.mutate(id, func(r Region) error {
		if key < 0 || key >= SlotCapacity() {
			return nil
		}
		r.SetRoot(key, value)
		return nil
	})
}

// Root returns root slot key of pool id, or 0 for a key outside
// [0, SlotCapacity()).
func (m *Manager) Root(id PoolID, key int) (uint64, error) {
	var v uint64
	err := m.inspect(id, func(r Region) error {
		if key < 0 || key >= SlotCapacity() {
			return nil
		}
		v = r.Root(key)
		return nil
	})
	return v, err
}
