package editor

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bethropolis/glyph/internal/encoding"
	"github.com/bethropolis/glyph/internal/piece"
)

// OpenFile builds a Table for path, detecting and normalizing its on-disk
// encoding per spec.md §6 (the PieceTable always stores UTF-8 with LF
// newlines internally; loading detects and normalizes, saving reverses
// exactly that normalization using the returned Detected).
//
// When the file is already pure UTF-8 with LF line endings and no BOM,
// decoding is a no-op and the original bytes can be mapped straight into
// the Table's original buffer via piece.LoadFromFile's mmap path — the
// common case for a large file gets the zero-copy load spec.md §5
// describes. Any other encoding or line ending requires materializing a
// decoded copy, so that path falls back to reading the whole file and
// building the Table over the owned, normalized slice.
func OpenFile(path string) (*piece.Table, encoding.Detected, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return piece.NewEmpty(), encoding.Detected{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, encoding.Detected{}, fmt.Errorf("editor: read %s: %w", path, err)
	}

	decoded, detected, err := encoding.Decode(raw)
	if err != nil {
		return nil, encoding.Detected{}, fmt.Errorf("editor: decode %s: %w", path, err)
	}

	if detected.Kind == encoding.KindUTF8 && bytes.IndexByte(raw, '\r') < 0 {
		table, mmapErr := piece.LoadFromFile(path)
		if mmapErr == nil {
			return table, detected, nil
		}
		// Fall through to the owned-slice path if the mmap failed for a
		// reason unrelated to content (permissions race, etc).
	}

	return piece.LoadFromSlice(decoded), detected, nil
}
