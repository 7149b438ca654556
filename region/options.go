package region

import (
	"io"
	"log/slog"
	"os"
)

// MinPoolSize is the smallest region Open will create. Smaller requests are
// rounded up to it.
const MinPoolSize = 1 << 20

// Runtime debug flag for allocation logging - controlled by PMEM_LOG_ALLOC env var.
var logAlloc = os.Getenv("PMEM_LOG_ALLOC") != ""

// Options configures how a region is opened.
type Options struct {
	// SizeClasses selects the free-list bucketing. Nil uses DefaultConfig.
	SizeClasses *SizeClassConfig

	// Prefault touches every page at open so an inaccessible mapping fails
	// Open with ErrBadRegion instead of faulting later. Costs one read per
	// page of the region.
	Prefault bool

	// Logger receives open/close and allocator diagnostics. Nil discards
	// output unless PMEM_LOG_ALLOC is set, in which case debug output goes
	// to stderr.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
