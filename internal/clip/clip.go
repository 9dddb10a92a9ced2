// Package clip mirrors the editor's kill-ring to the OS clipboard when
// enabled, using atotto/clipboard exactly as the teacher's
// config.Editor.SystemClipboard toggle intends it to be used. Grounded on
// SPEC_FULL.md §C.2. No timestamps are read on this hot path: OS clipboard
// content counts as newer than the internal kill-ring when it differs from
// what Read last saw there. The gen/osGen counters record write
// generations; Read does not consult them.
package clip

import "github.com/atotto/clipboard"

// Ring is the editor's kill-ring with optional OS clipboard mirroring.
type Ring struct {
	enabled bool

	text []byte
	gen  int

	osText []byte
	osGen  int
}

// New returns a Ring. enabled controls whether writes also mirror to the
// OS clipboard and whether Read prefers OS clipboard content.
func New(enabled bool) *Ring {
	return &Ring{enabled: enabled}
}

// SetEnabled toggles system clipboard mirroring at runtime (config reload).
func (r *Ring) SetEnabled(enabled bool) { r.enabled = enabled }

// Write replaces the kill-ring content, optionally mirroring to the OS
// clipboard. Mirroring failures are non-fatal: the internal kill-ring is
// always authoritative even if the OS call fails (headless terminals,
// missing xclip/wl-copy, etc).
func (r *Ring) Write(text []byte) {
	r.text = append(r.text[:0:0], text...)
	r.gen++
	if r.enabled {
		if err := clipboard.WriteAll(string(text)); err == nil {
			r.osGen = r.gen
		}
	}
}

// Read returns the most recently written text. If system clipboard
// mirroring is enabled and the OS clipboard holds non-empty content that
// differs from what Read last saw there, that content is treated as newer
// than the internal kill-ring (a content comparison, not a wall-clock one)
// and becomes the returned — and new internal — content.
func (r *Ring) Read() []byte {
	if r.enabled {
		if content, err := clipboard.ReadAll(); err == nil && content != "" && content != string(r.osText) {
			r.osText = []byte(content)
			if content != string(r.text) {
				r.text = append(r.text[:0:0], r.osText...)
				r.gen++
			}
		}
	}
	return r.text
}
