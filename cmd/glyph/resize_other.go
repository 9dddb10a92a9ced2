//go:build !unix

package main

import "os"

// watchResize has no signal-based resize notification on non-unix
// platforms, and nothing else re-queries the terminal, so the size read by
// terminal.Open stays in use for the whole session.
func watchResize() (ch <-chan os.Signal, stop func()) {
	return nil, func() {}
}
