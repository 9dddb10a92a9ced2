//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// watchResize reports terminal size changes via SIGWINCH, the mechanism
// spec.md §5 names for the out-of-band resize notification.
func watchResize() (ch <-chan os.Signal, stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGWINCH)
	return c, func() { signal.Stop(c) }
}
