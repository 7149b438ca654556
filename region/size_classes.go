package region

import "math"

// SizeClassConfig defines the allocation size class strategy.
// Block sizes include the 16-byte header.
type SizeClassConfig struct {
	// Name for this configuration (for benchmarking)
	Name string

	// Small allocation settings (linear increments)
	SmallMin       int64
	SmallMax       int64
	SmallIncrement int64

	// Medium allocation settings (logarithmic growth); anything above
	// MediumMax lands on the large list.
	MediumMax    int64
	GrowthFactor float64
}

// Predefined configurations.
var (
	// ConfigBalanced: 32-512 step 16 + 512-64K log growth.
	ConfigBalanced = SizeClassConfig{
		Name:           "Balanced",
		SmallMin:       32,
		SmallMax:       512,
		SmallIncrement: 16,
		MediumMax:      64 << 10,
		GrowthFactor:   1.5,
	}

	// ConfigCoarse: fewer buckets, more internal fragmentation.
	ConfigCoarse = SizeClassConfig{
		Name:           "Coarse",
		SmallMin:       32,
		SmallMax:       512,
		SmallIncrement: 64,
		MediumMax:      64 << 10,
		GrowthFactor:   2.0,
	}

	// DefaultConfig is used when Options.SizeClasses is nil.
	DefaultConfig = ConfigBalanced
)

// sizeClassTable holds the computed size class boundaries.
type sizeClassTable struct {
	config     SizeClassConfig
	boundaries []int64 // Upper bound for each size class
	numClasses int
}

// newSizeClassTable computes size class boundaries from config.
func newSizeClassTable(config SizeClassConfig) *sizeClassTable {
	table := &sizeClassTable{
		config:     config,
		boundaries: make([]int64, 0, 64),
	}

	// Phase 1: small allocations (linear increments)
	for size := config.SmallMin; size < config.SmallMax; size += config.SmallIncrement {
		table.boundaries = append(table.boundaries, size+config.SmallIncrement-1)
	}

	// Phase 2: medium allocations (logarithmic growth)
	if config.SmallMax < config.MediumMax {
		size := config.SmallMax
		for size < config.MediumMax {
			nextSize := int64(math.Ceil(float64(size) * config.GrowthFactor))
			if nextSize <= size {
				nextSize = size + 1 // Ensure progress
			}
			table.boundaries = append(table.boundaries, nextSize-1)
			size = nextSize
		}
	}

	table.numClasses = len(table.boundaries)
	return table
}

// getSizeClass returns the size class index for a block size.
// Returns numClasses for sizes above every boundary (the large list).
func (t *sizeClassTable) getSizeClass(size int64) int {
	lo, hi := 0, t.numClasses-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= t.boundaries[mid] {
			if mid == 0 || size > t.boundaries[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return t.numClasses
}

// String returns the configuration name.
func (t *sizeClassTable) String() string {
	return t.config.Name
}
