package terminal

import "bufio"
import "bytes"

// ForTest returns a Terminal backed by an in-memory buffer instead of a
// real tty, for other packages' tests that need to drive a Terminal
// without a pty (internal/view's render tests in particular).
func ForTest() *Terminal {
	buf := &bytes.Buffer{}
	return &Terminal{w: bufio.NewWriter(buf), width: 80, height: 24, testBuf: buf}
}

// TestOutput flushes and returns everything written since the Terminal
// was created, for asserting on emitted ANSI sequences in tests.
func (t *Terminal) TestOutput() []byte {
	t.w.Flush()
	return t.testBuf.Bytes()
}
