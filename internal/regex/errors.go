package regex

import "errors"

// ErrEmptyPattern is the one hard compile failure this engine recognizes;
// every other malformed input (bad escape, unterminated class, a lone
// quantifier) degrades gracefully to a literal per spec.md §4.4 rather than
// failing compilation.
var ErrEmptyPattern = errors.New("regex: empty pattern")
