package pool

import (
	"io"
	"log/slog"

	"github.com/joshuapare/pmemkit/region"
)

// Options configures a Manager.
type Options struct {
	// MinPoolSize is the smallest capacity Open passes to the backend.
	// Smaller requests are raised to it. Zero uses region.MinPoolSize.
	MinPoolSize int64

	// StrictDurability makes Flush, Sync, Persist and Drain take the pool
	// lock in shared mode so they never observe a block header that a
	// concurrent Reallocate or Free is rewriting.
	// Default: false (durability calls only take the registry read lock).
	StrictDurability bool

	// Logger receives pool lifecycle messages. Nil discards output.
	Logger *slog.Logger

	// Backend opens the regions pools are carved from.
	// Nil uses FileBackend with the Manager's logger.
	Backend Backend
}

// DefaultOptions returns the options used by New when given a zero Options.
func DefaultOptions() Options {
	return Options{
		MinPoolSize: region.MinPoolSize,
	}
}

func (o Options) withDefaults() Options {
	if o.MinPoolSize <= 0 {
		o.MinPoolSize = region.MinPoolSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Backend == nil {
		o.Backend = FileBackend{Options: region.Options{Logger: o.Logger}}
	}
	return o
}
