package format

import (
	"errors"
	"testing"
)

func TestReadBlockAllocated(t *testing.T) {
	buf := make([]byte, HeaderSize+PageSize)
	off := int64(HeaderSize)
	PutBlockHeader(buf, off, 0x40, true)

	blk, next, err := NextBlock(buf, off)
	if err != nil {
		t.Fatalf("NextBlock: %v", err)
	}
	if blk.Free {
		t.Fatalf("expected allocated block")
	}
	if blk.Size != 0x40 || blk.PayloadSize() != 0x40-BlockHeaderSize {
		t.Fatalf("unexpected block: %+v", blk)
	}
	if next != off+0x40 {
		t.Fatalf("next offset mismatch: %d", next)
	}
}

func TestReadBlockFree(t *testing.T) {
	buf := make([]byte, HeaderSize+PageSize)
	PutBlockHeader(buf, HeaderSize, PageSize, false)

	blk, err := ReadBlock(buf, HeaderSize)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !blk.Free {
		t.Fatalf("expected free block")
	}
}

func TestReadBlockRejectsMissingSignature(t *testing.T) {
	buf := make([]byte, HeaderSize+PageSize)
	PutI64(buf, HeaderSize, -64)

	_, err := ReadBlock(buf, HeaderSize)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestReadBlockRejectsOversize(t *testing.T) {
	buf := make([]byte, HeaderSize+PageSize)
	PutBlockHeader(buf, HeaderSize, 2*PageSize, true)

	_, err := ReadBlock(buf, HeaderSize)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReadBlockOutOfBounds(t *testing.T) {
	buf := make([]byte, 64)
	if _, err := ReadBlock(buf, 60); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, err := ReadBlock(buf, -1); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for negative offset, got %v", err)
	}
}

func TestClearBlockHeader(t *testing.T) {
	buf := make([]byte, HeaderSize+PageSize)
	PutBlockHeader(buf, HeaderSize, 64, true)
	ClearBlockHeader(buf, HeaderSize)

	for i := HeaderSize; i < HeaderSize+BlockHeaderSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("byte %d not cleared", i)
		}
	}
}

func TestParseBlockHeaderIgnoresBounds(t *testing.T) {
	buf := make([]byte, BlockHeaderSize)
	PutBlockHeader(buf, 0, 1<<20, true)

	blk, err := ParseBlockHeader(buf)
	if err != nil {
		t.Fatalf("ParseBlockHeader: %v", err)
	}
	if blk.Size != 1<<20 || blk.Free {
		t.Fatalf("unexpected block: %+v", blk)
	}
	if _, err := ParseBlockHeader(buf[:8]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
