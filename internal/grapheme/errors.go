package grapheme

import "errors"

// ErrInvalidUTF8 is returned by codepoint decoding when the bytes at the
// current position are not valid UTF-8 (spec.md §7's InvalidUtf8 kind).
var ErrInvalidUTF8 = errors.New("grapheme: invalid utf-8")
