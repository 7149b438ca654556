package mmfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// CheckFreeSpace fails when the filesystem holding path cannot fit a file of
// size bytes, counting the bytes an existing file already occupies.
func CheckFreeSpace(path string, size int64) error {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		// Not every filesystem reports usage; let the truncate decide.
		return nil
	}
	need := size
	if st, err := os.Stat(path); err == nil {
		need -= st.Size()
	}
	if need > 0 && uint64(need) > usage.Free {
		return fmt.Errorf("mmfile: %s needs %d bytes, %d free on %s", path, need, usage.Free, usage.Path)
	}
	return nil
}
