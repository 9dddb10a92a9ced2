package piece

import "errors"

// Error kinds from the specification's error-handling design (spec.md §7).
// BufferInconsistency should be unreachable; it is kept as a sentinel so
// callers can recognize it as fatal rather than a normal edit failure.
var (
	ErrPositionOutOfBounds = errors.New("piece: position out of bounds")
	ErrBufferInconsistency = errors.New("piece: internal invariant violated")
)
