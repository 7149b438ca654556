package region

import (
	"errors"

	"github.com/joshuapare/pmemkit/internal/mmfile"
)

var (
	// ErrNoSpace indicates that no free block large enough was found.
	ErrNoSpace = errors.New("region: no free block large enough")

	// ErrBadHandle indicates an address that does not point at a live allocation.
	ErrBadHandle = errors.New("region: bad allocation address")

	// ErrDoubleFree indicates an attempt to free or resize a block that is already free.
	ErrDoubleFree = errors.New("region: block already free")

	// ErrBadRegion indicates the backing file is not a valid region.
	ErrBadRegion = errors.New("region: invalid region file")

	// ErrClosed indicates use of a closed region.
	ErrClosed = errors.New("region: closed")

	// ErrLocked indicates the backing file is held open by another region.
	ErrLocked = mmfile.ErrLocked
)
