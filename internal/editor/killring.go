package editor

import "github.com/bethropolis/glyph/internal/clip"

// killRing holds the Controller's linear kill-ring (mirrored to the OS
// clipboard via internal/clip) and SPEC_FULL.md §C.1's rectangle kill-ring,
// a per-line vector filled by kill-rectangle and drained by yank-rectangle.
type killRing struct {
	linear *clip.Ring
	rect   [][]byte
}

func newKillRing(systemClipboard bool) *killRing {
	return &killRing{linear: clip.New(systemClipboard)}
}

func (k *killRing) writeLinear(text []byte) { k.linear.Write(text) }
func (k *killRing) readLinear() []byte      { return k.linear.Read() }

func (k *killRing) setRectangle(lines [][]byte) {
	k.rect = lines
}

func (k *killRing) rectangle() [][]byte { return k.rect }
