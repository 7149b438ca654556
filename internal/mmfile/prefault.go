package mmfile

import (
	"fmt"
	"runtime/debug"
)

// Prefault touches every page of the mapping so that pages the kernel cannot
// back (a file shrunk underneath the mapping, a failing device) are reported
// here as an error instead of crashing the process with SIGBUS on first use.
func (m *Mapping) Prefault() error {
	if m.data == nil {
		return ErrClosed
	}
	if err := populate(m.data); err != nil {
		return fmt.Errorf("mmfile: %s: inaccessible pages: %w", m.path, err)
	}
	return nil
}

// touchPages reads one byte per page with faults converted to panics.
func touchPages(data []byte) (retErr error) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				retErr = fmt.Errorf("memory access fault: %w", err)
			} else {
				retErr = fmt.Errorf("memory access fault: %v", r)
			}
		}
	}()

	const pageSize = 4096
	var sink byte
	for i := 0; i < len(data); i += pageSize {
		sink ^= data[i]
	}
	if len(data) > 0 {
		sink ^= data[len(data)-1]
	}
	_ = sink
	return nil
}
