package format

// AlignBlock returns n aligned up to the next 16-byte boundary.
// Used for block sizes so every payload stays 16-byte aligned.
//
// Example:
//
//	AlignBlock(1)  = 16
//	AlignBlock(16) = 16
//	AlignBlock(17) = 32
func AlignBlock(n int64) int64 {
	return (n + BlockAlignmentMask) &^ BlockAlignmentMask
}

// AlignPageDown rounds n down to a page boundary.
func AlignPageDown(n int64) int64 {
	return n &^ PageAlignmentMask
}

// AlignPageUp rounds n up to the next page boundary.
//
// Example:
//
//	AlignPageUp(1)    = 4096
//	AlignPageUp(4096) = 4096
//	AlignPageUp(4097) = 8192
func AlignPageUp(n int64) int64 {
	return (n + PageAlignmentMask) &^ PageAlignmentMask
}
