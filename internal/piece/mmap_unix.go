//go:build unix

package piece

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// LoadFromFile opens path, memory-maps it read-only, and builds a Table
// whose original buffer borrows that mapping until Close unmaps it.
// Zero-length files map to an empty Table (mmap of length 0 is undefined on
// most platforms, so they're handled as the in-memory empty case instead).
func LoadFromFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("piece: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("piece: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return NewEmpty(), nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("piece: mmap %s: %w", path, err)
	}

	t := LoadFromSlice(data)
	t.mapped = true
	return t, nil
}

func munmapOriginal(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("piece: munmap: %w", err)
	}
	return nil
}
