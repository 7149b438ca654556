package pool

// Handle is the numeric form of an allocation's payload address as exchanged
// with callers. The zero Handle is the null handle.
type Handle uint64

// InvalidHandle is the null handle.
const InvalidHandle Handle = 0

// Encode converts a native address to a Handle. It is the identity and
// lossless for every address produced by this package.
func Encode(addr uintptr) Handle { return Handle(addr) }

// Decode converts a Handle back to the native address.
func Decode(h Handle) uintptr { return uintptr(h) }

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == InvalidHandle }
