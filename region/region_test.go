package region

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pmemkit/internal/format"
)

func TestOpen_ClampsToMinimum(t *testing.T) {
	r, _ := openTestRegion(t, 1024)
	require.Equal(t, int64(MinPoolSize), r.Capacity())

	stats := r.Stats()
	assert.Equal(t, int64(MinPoolSize-format.HeaderSize), stats.DataSize)
	assert.Equal(t, stats.DataSize, stats.Free)
	assert.Equal(t, 1, stats.FreeBlocks)
	assert.Zero(t, stats.Used)
}

func TestOpen_RoundsCapacityToPage(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize+1)
	require.Equal(t, int64(MinPoolSize+format.PageSize), r.Capacity())
}

func TestOpen_ReopenKeepsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.pm")
	r, err := Open(path, 2*MinPoolSize, true, Options{})
	require.NoError(t, err)

	addr, err := r.Realloc(0, 100, true)
	require.NoError(t, err)
	buf, err := r.Bytes(addr, 100)
	require.NoError(t, err)
	copy(buf, "persistent payload")
	r.SetRoot(3, uint64(addr-r.BaseAddress()))
	id := r.ID()
	used := r.Stats().Used
	require.NoError(t, r.Close())

	r, err = Open(path, 0, false, Options{})
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.WasClean())
	assert.Equal(t, id, r.ID())
	assert.Equal(t, int64(2*MinPoolSize), r.Capacity())
	assert.Equal(t, used, r.Stats().Used, "allocator must rebuild from headers")

	addr = r.BaseAddress() + uintptr(r.Root(3))
	size, err := r.UsableSize(addr)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, size, int64(100))
	buf, err = r.Bytes(addr, 18)
	require.NoError(t, err)
	assert.Equal(t, "persistent payload", string(buf))
	walkBlocks(t, r)
}

func TestOpen_Prefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefault.pm")
	r, err := Open(path, 0, true, Options{Prefault: true})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = Open(path, 0, false, Options{Prefault: true})
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestOpen_DetectsUncleanShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.pm")
	r, err := Open(path, MinPoolSize, true, Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// Simulate a crash: primary sequence bumped without the matching close.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	seq := make([]byte, 4)
	format.PutU32(seq, 0, 42)
	_, err = f.WriteAt(seq, format.RegionPrimarySeqOffset)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err = Open(path, 0, false, Options{})
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.WasClean())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.pm"), 0, false, Options{})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not a region", func(t *testing.T) {
		path := filepath.Join(dir, "junk.pm")
		require.NoError(t, os.WriteFile(path, make([]byte, 8192), 0o600))
		_, err := Open(path, 0, false, Options{})
		require.ErrorIs(t, err, ErrBadRegion)
	})

	t.Run("capacity mismatch", func(t *testing.T) {
		path := filepath.Join(dir, "short.pm")
		r, err := Open(path, MinPoolSize, true, Options{})
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.NoError(t, os.Truncate(path, MinPoolSize/2))
		_, err = Open(path, 0, false, Options{})
		require.ErrorIs(t, err, ErrBadRegion)
	})

	t.Run("already open", func(t *testing.T) {
		path := filepath.Join(dir, "held.pm")
		r, err := Open(path, MinPoolSize, true, Options{})
		require.NoError(t, err)
		defer r.Close()
		_, err = Open(path, 0, false, Options{})
		require.ErrorIs(t, err, ErrLocked)
	})
}

func TestClose_Idempotent(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Realloc(0, 16, false)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, r.Free(r.BaseAddress()+format.HeaderSize+format.BlockHeaderSize), ErrClosed)
	require.ErrorIs(t, r.MakeDurable(r.BaseAddress(), 10, LevelSync), ErrClosed)
	require.ErrorIs(t, r.Drain(), ErrClosed)
	assert.Zero(t, r.Root(0))
}

func TestRoots(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)

	for key := range format.RootSlots {
		r.SetRoot(key, uint64(key)*7+1)
	}
	for key := range format.RootSlots {
		assert.Equal(t, uint64(key)*7+1, r.Root(key))
	}

	r.SetRoot(-1, 99)
	r.SetRoot(format.RootSlots, 99)
	assert.Zero(t, r.Root(-1))
	assert.Zero(t, r.Root(format.RootSlots))
	assert.Equal(t, uint64(1), r.Root(0), "out-of-range write must not land in slot 0")
}

func TestBytes_Bounds(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)

	_, err := r.Bytes(r.BaseAddress()-1, 1)
	require.ErrorIs(t, err, ErrBadHandle)
	_, err = r.Bytes(r.BaseAddress()+uintptr(r.Capacity()), 1)
	require.ErrorIs(t, err, ErrBadHandle)
	_, err = r.Bytes(r.BaseAddress()+uintptr(r.Capacity())-8, 16)
	require.ErrorIs(t, err, ErrBadHandle)

	whole, err := r.Bytes(r.BaseAddress(), r.Capacity())
	require.NoError(t, err)
	assert.Len(t, whole, int(r.Capacity()))
	assert.Equal(t, format.RegionSignature, whole[:4])
}

func TestDurability_String(t *testing.T) {
	assert.Equal(t, "flush", LevelFlush.String())
	assert.Equal(t, "sync", LevelSync.String())
	assert.Equal(t, "persist", LevelPersist.String())
	assert.Equal(t, "Durability(7)", Durability(7).String())
}

func TestMakeDurable(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)
	addr, err := r.Realloc(0, 5000, true)
	require.NoError(t, err)

	for _, level := range []Durability{LevelFlush, LevelSync, LevelPersist} {
		require.NoError(t, r.MakeDurable(addr, 5000, level), level.String())
	}
	require.NoError(t, r.MakeDurable(addr, 0, LevelSync), "empty range is a no-op")
	require.NoError(t, r.MakeDurable(r.BaseAddress(), r.Capacity(), LevelPersist), "whole region")

	err = r.MakeDurable(r.BaseAddress()-format.PageSize, 10, LevelSync)
	require.ErrorIs(t, err, ErrBadHandle)
	err = r.MakeDurable(addr, 10, Durability(9))
	require.Error(t, err)
}

func TestDrain_WritesTrackedRanges(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)
	base := r.BaseAddress()

	require.NoError(t, r.MakeDurable(base+format.HeaderSize+100, 10, LevelFlush))
	require.NoError(t, r.MakeDurable(base+format.HeaderSize+200, 10, LevelFlush))
	require.NoError(t, r.MakeDurable(base+5*format.PageSize, format.PageSize, LevelFlush))
	require.NoError(t, r.MakeDurable(base+8*format.PageSize, 1, LevelSync), "sync is not tracked")

	pending := r.PendingRanges()
	require.Equal(t, []Range{
		{Off: format.PageSize, Len: format.PageSize},
		{Off: 5 * format.PageSize, Len: format.PageSize},
	}, pending)

	require.NoError(t, r.Drain())
	assert.Empty(t, r.PendingRanges())
	require.NoError(t, r.Drain(), "empty drain")
}

func TestDrainContext_Cancelled(t *testing.T) {
	r, _ := openTestRegion(t, MinPoolSize)
	require.NoError(t, r.MakeDurable(r.BaseAddress()+format.HeaderSize, 10, LevelFlush))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.DrainContext(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
