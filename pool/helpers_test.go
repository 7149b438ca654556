package pool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newFakeManager returns a Manager over a fakeBackend.
func newFakeManager(t *testing.T, opts Options) (*Manager, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	opts.Backend = fb
	m := New(opts)
	t.Cleanup(func() { _ = m.Shutdown() })
	return m, fb
}

// newFileManager returns a Manager over real region files.
func newFileManager(t *testing.T) *Manager {
	t.Helper()
	m := New(DefaultOptions())
	t.Cleanup(func() { _ = m.Shutdown() })
	return m
}

// openFilePool creates a fresh file-backed pool in a temp dir.
func openFilePool(t *testing.T, m *Manager, capacity int64) (PoolID, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.pmem")
	id, err := m.Open(capacity, path, true)
	require.NoError(t, err)
	return id, path
}

// payload returns the bytes of allocation h.
func payload(t *testing.T, m *Manager, id PoolID, h Handle) []byte {
	t.Helper()
	v, err := m.RetrieveView(id, h)
	require.NoError(t, err)
	return v.Bytes()
}
