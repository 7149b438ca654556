// Package format houses the on-media layout of a persistent memory region:
// the fixed header page at the start of the backing file and the block
// headers that precede every allocation. The helpers are allocation-free and
// independent from the public API so the allocator and the pool service can
// share one definition of the layout.
package format

var (
	// RegionSignature is the four-byte signature at the start of every region.
	// Layout:
	//   0x00  'p' 'm' 'e' 'm'
	RegionSignature = []byte{'p', 'm', 'e', 'm'}

	// BlockSignature identifies a block header written by the allocator.
	BlockSignature = []byte{'p', 'm', 'b', 'k'}
)

const (
	// RegionVersion is the only layout version this package writes.
	RegionVersion = 1

	// HeaderSize is the size of the region header page. The first block
	// starts immediately after it.
	HeaderSize = 4096

	// PageSize is the granularity used when making ranges durable.
	PageSize = 4096

	// PageAlignmentMask is PageSize - 1.
	PageAlignmentMask = PageSize - 1

	// BlockHeaderSize is the number of bytes preceding every payload.
	BlockHeaderSize = 16

	// BlockAlignment is the required alignment of blocks and payloads.
	BlockAlignment = 16

	// BlockAlignmentMask is BlockAlignment - 1.
	BlockAlignmentMask = BlockAlignment - 1

	// MinBlockSize is the smallest block the allocator will carve, header included.
	MinBlockSize = 32

	// RootSlots is the number of root slots stored in the region header.
	RootSlots = 255

	// Region header field offsets.
	RegionSignatureOffset    = 0x00
	RegionSignatureSize      = 4
	RegionVersionOffset      = 0x04
	RegionCapacityOffset     = 0x08
	RegionDataStartOffset    = 0x10
	RegionPrimarySeqOffset   = 0x18
	RegionSecondarySeqOffset = 0x1C
	RegionUUIDOffset         = 0x20
	RegionUUIDSize           = 16
	RegionRootsOffset        = 0x40
	RootSlotSize             = 8

	// Block header field offsets (relative to the block start).
	BlockSizeOffset      = 0x00
	BlockSignatureOffset = 0x08
	BlockSignatureSize   = 4
	BlockReservedOffset  = 0x0C
)
