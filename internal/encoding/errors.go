package encoding

import "errors"

// ErrBinaryFile is spec.md §7's BinaryFile kind: detection rejected the
// content as text.
var ErrBinaryFile = errors.New("encoding: file looks binary")
