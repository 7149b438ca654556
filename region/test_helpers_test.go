package region

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pmemkit/internal/format"
)

// openTestRegion creates a fresh region of capacity bytes in a temp dir.
func openTestRegion(t testing.TB, capacity int64) (*Region, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pm")
	r, err := Open(path, capacity, true, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, path
}

// walkBlocks scans every block header and fails on any inconsistency: blocks
// must tile the data area exactly and no two free blocks may be adjacent.
func walkBlocks(t testing.TB, r *Region) []format.Block {
	t.Helper()
	var (
		blocks   []format.Block
		prevFree bool
	)
	off := r.alloc.start
	for off < r.alloc.end {
		blk, next, err := format.NextBlock(r.data, off)
		require.NoError(t, err, "block at %#x", off)
		require.Zero(t, blk.Size%format.BlockAlignment, "unaligned block at %#x", off)
		if blk.Free {
			require.False(t, prevFree, "adjacent free blocks at %#x", off)
			_, indexed := r.alloc.byOff[off]
			require.True(t, indexed, "free block at %#x missing from index", off)
		}
		prevFree = blk.Free
		blocks = append(blocks, blk)
		off = next
	}
	require.Equal(t, r.alloc.end, off, "blocks must end exactly at capacity")
	return blocks
}
