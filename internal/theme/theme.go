// Package theme turns a small perceptual color palette into the concrete
// ANSI SGR sequences the View emits: grey foreground for comments and line
// numbers, a dim background for the ideographic space, and two distinct
// search-highlight colors. Grounded on the teacher's internal/theme (same
// idea of a named palette of tcell.Style values with a GetStyle-style
// lookup), but retargeted from tcell.Style to raw ANSI bytes since this
// View writes its own escape sequences instead of drawing into a
// tcell.Screen, and from hand-picked hex constants to perceptually blended
// colors via go-colorful so the comment grey and the ideographic-space tint
// are actually derived from the background rather than guessed.
package theme

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds pre-rendered ANSI byte sequences so the View's hot render
// loop never formats a string per cell.
type Theme struct {
	GreyFG        []byte // comments, line-number gutter, the '»' scroll marker
	InverseOn     []byte
	InverseOff    []byte
	SearchMatch   []byte
	SearchCurrent []byte
	IdeographicBG []byte
	Reset         []byte
}

// New builds the default dark theme.
func New() *Theme {
	bg := colorful.Color{R: 0x1a / 255.0, G: 0x1d / 255.0, B: 0x23 / 255.0}
	fg := colorful.Color{R: 0xc5 / 255.0, G: 0xcd / 255.0, B: 0xd9 / 255.0}
	white := colorful.Color{R: 1, G: 1, B: 1}

	comment := bg.BlendLab(fg, 0.45)
	search := colorful.Color{R: 0xd1 / 255.0, G: 0x9a / 255.0, B: 0x66 / 255.0}
	current := colorful.Color{R: 0x98 / 255.0, G: 0xc3 / 255.0, B: 0x79 / 255.0}
	ideographic := bg.BlendLab(white, 0.08)

	return &Theme{
		GreyFG:        sgrFG(comment),
		InverseOn:     []byte("\x1b[7m"),
		InverseOff:    []byte("\x1b[27m"),
		SearchMatch:   append(sgrBG(search), []byte("\x1b[30m")...),
		SearchCurrent: append(sgrBG(current), []byte("\x1b[30m")...),
		IdeographicBG: sgrBG(ideographic),
		Reset:         []byte("\x1b[0m"),
	}
}

func sgrFG(c colorful.Color) []byte {
	return []byte(fmt.Sprintf("\x1b[38;5;%dm", ansi256(c)))
}

func sgrBG(c colorful.Color) []byte {
	return []byte(fmt.Sprintf("\x1b[48;5;%dm", ansi256(c)))
}

// ansi256 maps a perceptual color onto the nearest xterm 256-color palette
// entry: the 6x6x6 color cube for chromatic colors, the 24-step grey ramp
// for colors where R==G==B.
func ansi256(c colorful.Color) int {
	r, g, b := c.RGB255()
	if r == g && g == b {
		switch {
		case r < 8:
			return 16
		case r > 248:
			return 231
		default:
			return 232 + int(math.Round(float64(int(r)-8)/247*24))
		}
	}
	ri := int(math.Round(float64(r) / 255 * 5))
	gi := int(math.Round(float64(g) / 255 * 5))
	bi := int(math.Round(float64(b) / 255 * 5))
	return 16 + 36*ri + 6*gi + bi
}
