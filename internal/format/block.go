package format

import (
	"bytes"
	"fmt"
)

// Block describes one allocation unit (free or in-use) inside a region.
//
// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     Signed size. Negative => allocated, positive => free.
//	              The absolute value includes the 16-byte header.
//	0x08    4     Signature "pmbk"
//	0x0C    4     Reserved, zero
//	0x10    ...   Payload
type Block struct {
	Offset int64 // Offset of the header relative to the region start
	Size   int64 // Total size including header
	Free   bool  // True when the block is on a free list
}

// PayloadSize returns the usable bytes of the block.
func (b Block) PayloadSize() int64 { return b.Size - BlockHeaderSize }

// PutBlockHeader writes a block header at off. size is the total block size;
// allocated blocks are recorded with a negative size.
func PutBlockHeader(b []byte, off int64, size int64, allocated bool) {
	raw := size
	if allocated {
		raw = -size
	}
	PutI64(b, int(off)+BlockSizeOffset, raw)
	copy(b[off+BlockSignatureOffset:off+BlockSignatureOffset+BlockSignatureSize], BlockSignature)
	PutU32(b, int(off)+BlockReservedOffset, 0)
}

// ClearBlockHeader wipes the header at off, used when a block is absorbed by
// a neighbour so stale headers are never mistaken for live ones.
func ClearBlockHeader(b []byte, off int64) {
	clear(b[off : off+BlockHeaderSize])
}

// ParseBlockHeader decodes the header at the start of b without checking
// that the declared size fits in b. Used when only the header is at hand.
func ParseBlockHeader(b []byte) (Block, error) {
	if len(b) < BlockHeaderSize {
		return Block{}, fmt.Errorf("block: %w", ErrTruncated)
	}
	if !bytes.Equal(b[BlockSignatureOffset:BlockSignatureOffset+BlockSignatureSize], BlockSignature) {
		return Block{}, fmt.Errorf("block: %w", ErrSignatureMismatch)
	}
	raw := ReadI64(b, BlockSizeOffset)
	allocated := raw < 0
	size := raw
	if allocated {
		size = -size
	}
	if size < MinBlockSize {
		return Block{}, fmt.Errorf("block: declared size %d too small: %w", size, ErrTruncated)
	}
	return Block{Size: size, Free: !allocated}, nil
}

// ReadBlock decodes the block header at off and checks that the block lies
// inside b.
func ReadBlock(b []byte, off int64) (Block, error) {
	if off < 0 || off+BlockHeaderSize > int64(len(b)) {
		return Block{}, fmt.Errorf("block: %w", ErrTruncated)
	}
	blk, err := ParseBlockHeader(b[off : off+BlockHeaderSize])
	if err != nil {
		return Block{}, fmt.Errorf("block at %#x: %w", off, err)
	}
	if blk.Size > int64(len(b))-off {
		return Block{}, fmt.Errorf("block at %#x: declared size %d: %w", off, blk.Size, ErrTruncated)
	}
	blk.Offset = off
	return blk, nil
}

// NextBlock decodes the block at off and returns the offset of the block that
// follows it.
func NextBlock(b []byte, off int64) (Block, int64, error) {
	blk, err := ReadBlock(b, off)
	if err != nil {
		return Block{}, 0, err
	}
	return blk, off + blk.Size, nil
}
