package format

import (
	"bytes"
	"fmt"
)

// RegionHeader is a zero-copy view of the header page at the start of a
// region. All accessors read and write b.raw directly.
//
// Header layout (little-endian):
//
//	Offset  Size       Description
//	0x00    4          Signature "pmem"
//	0x04    4          Layout version
//	0x08    8          Capacity of the region in bytes (header page included)
//	0x10    8          Offset of the first block
//	0x18    4          Primary sequence, bumped when the region is opened
//	0x1C    4          Secondary sequence, set equal to primary on clean close
//	0x20    16         Region UUID
//	0x40    255*8      Root slots
type RegionHeader struct {
	raw []byte
}

// ParseRegionHeader validates the signature and version and returns a header view.
func ParseRegionHeader(b []byte) (*RegionHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("region header: %w", ErrTruncated)
	}
	sig := b[RegionSignatureOffset : RegionSignatureOffset+RegionSignatureSize]
	if !bytes.Equal(sig, RegionSignature) {
		return nil, fmt.Errorf("region header: %w", ErrSignatureMismatch)
	}
	if v := ReadU32(b, RegionVersionOffset); v != RegionVersion {
		return nil, fmt.Errorf("region header: version %d: %w", v, ErrUnsupported)
	}
	if ds := ReadU64(b, RegionDataStartOffset); ds < HeaderSize || ds&BlockAlignmentMask != 0 {
		return nil, fmt.Errorf("region header: data start %#x: %w", ds, ErrUnsupported)
	}
	return &RegionHeader{raw: b[:HeaderSize]}, nil
}

// InitRegionHeader formats b as an empty region header of the given capacity.
// Root slots and sequence numbers start at zero.
func InitRegionHeader(b []byte, capacity int64, id [RegionUUIDSize]byte) (*RegionHeader, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("region header: %w", ErrTruncated)
	}
	clear(b[:HeaderSize])
	copy(b[RegionSignatureOffset:], RegionSignature)
	PutU32(b, RegionVersionOffset, RegionVersion)
	PutU64(b, RegionCapacityOffset, uint64(capacity))
	PutU64(b, RegionDataStartOffset, HeaderSize)
	copy(b[RegionUUIDOffset:RegionUUIDOffset+RegionUUIDSize], id[:])
	return &RegionHeader{raw: b[:HeaderSize]}, nil
}

// Raw returns the raw bytes of the header page.
func (h *RegionHeader) Raw() []byte { return h.raw }

// Capacity returns the recorded capacity of the region.
func (h *RegionHeader) Capacity() int64 { return int64(ReadU64(h.raw, RegionCapacityOffset)) }

// DataStart returns the offset of the first block.
func (h *RegionHeader) DataStart() int64 { return int64(ReadU64(h.raw, RegionDataStartOffset)) }

// Sequence1 returns the primary sequence number.
func (h *RegionHeader) Sequence1() uint32 { return ReadU32(h.raw, RegionPrimarySeqOffset) }

// Sequence2 returns the secondary sequence number.
func (h *RegionHeader) Sequence2() uint32 { return ReadU32(h.raw, RegionSecondarySeqOffset) }

// IsClean reports whether the last session closed the region cleanly.
func (h *RegionHeader) IsClean() bool { return h.Sequence1() == h.Sequence2() }

// MarkOpen bumps the primary sequence so a crash before MarkClean is detectable.
func (h *RegionHeader) MarkOpen() {
	PutU32(h.raw, RegionPrimarySeqOffset, h.Sequence1()+1)
}

// MarkClean records a clean close.
func (h *RegionHeader) MarkClean() {
	PutU32(h.raw, RegionSecondarySeqOffset, h.Sequence1())
}

// UUID returns the region identity stamped at format time.
func (h *RegionHeader) UUID() [RegionUUIDSize]byte {
	var id [RegionUUIDSize]byte
	copy(id[:], h.raw[RegionUUIDOffset:RegionUUIDOffset+RegionUUIDSize])
	return id
}

// Root returns root slot key. The caller validates key.
func (h *RegionHeader) Root(key int) uint64 {
	return ReadU64(h.raw, RegionRootsOffset+key*RootSlotSize)
}

// SetRoot stores value in root slot key. The caller validates key.
func (h *RegionHeader) SetRoot(key int, value uint64) {
	PutU64(h.raw, RegionRootsOffset+key*RootSlotSize, value)
}

// RootOffset returns the byte offset of root slot key within the header.
func RootOffset(key int) int {
	return RegionRootsOffset + key*RootSlotSize
}
