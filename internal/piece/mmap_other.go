//go:build !unix

package piece

import (
	"fmt"
	"os"
)

// LoadFromFile is the non-unix fallback: it reads the whole file into a
// heap buffer instead of mmap'ing it. Functionally equivalent, just without
// the zero-copy benefit spec.md's mmap-backed original buffer describes.
func LoadFromFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("piece: read %s: %w", path, err)
	}
	return LoadFromSlice(data), nil
}

func munmapOriginal(data []byte) error { return nil }
