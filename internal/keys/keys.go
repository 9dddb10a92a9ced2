// Package keys turns tcell key events into the abstract Key representation
// spec.md §6 names, so the rest of the editor never imports tcell
// directly. Grounded on the teacher's internal/input (InputProcessor
// translating tcell.EventKey into its own ActionEvent), but retargeted
// from an action-dispatch table to a pure key-shape decoder, since
// SPEC_FULL.md's Controller does its own mode-aware dispatch over a
// stable Key value rather than a flat action enum.
package keys

import "github.com/gdamore/tcell/v2"

// Name enumerates the named, non-printable keys spec.md §6 lists.
type Name int

const (
	NameNone Name = iota
	Enter
	Tab
	ShiftTab
	Backspace
	Delete
	Escape
	Home
	End
	PageUp
	PageDown
	ArrowUp
	ArrowDown
	ArrowLeft
	ArrowRight
	AltArrowUp
	AltArrowDown
	AltDelete
	CtrlTab
	CtrlShiftTab
	CtrlSpace
	CtrlUnderscore
)

// Kind distinguishes which field of Key is meaningful.
type Kind int

const (
	KindNamed Kind = iota
	KindChar
	KindCodepoint
	KindCtrl
	KindAlt
	KindUnknown
)

// Key is the decoded, terminal-library-independent keypress.
type Key struct {
	Kind  Kind
	Name  Name
	Char  byte // KindChar: a plain ASCII printable byte
	Cp    rune // KindCodepoint: a non-ASCII rune
	Ctrl  byte // KindCtrl: the base letter, 'a'..'z'
	Alt   byte // KindAlt: the base byte following ESC
}

// Decode maps a tcell key event onto the abstract Key space.
func Decode(ev *tcell.EventKey) Key {
	key := ev.Key()
	mod := ev.Modifiers()

	if mod&tcell.ModAlt != 0 {
		switch key {
		case tcell.KeyUp:
			return Key{Kind: KindNamed, Name: AltArrowUp}
		case tcell.KeyDown:
			return Key{Kind: KindNamed, Name: AltArrowDown}
		case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
			return Key{Kind: KindNamed, Name: AltDelete}
		case tcell.KeyRune:
			return Key{Kind: KindAlt, Alt: byte(ev.Rune())}
		}
	}

	if mod&tcell.ModCtrl != 0 && key == tcell.KeyTab {
		return Key{Kind: KindNamed, Name: CtrlTab}
	}
	if mod&(tcell.ModCtrl|tcell.ModShift) == (tcell.ModCtrl|tcell.ModShift) && key == tcell.KeyBacktab {
		return Key{Kind: KindNamed, Name: CtrlShiftTab}
	}

	// Ctrl-Space and Ctrl-_ each have their own ASCII control code (NUL and
	// 0x1F) and so decode unambiguously, unlike Ctrl-/, which has no
	// control code of its own.
	if key == tcell.KeyCtrlSpace {
		return Key{Kind: KindNamed, Name: CtrlSpace}
	}
	if key == tcell.KeyCtrlUnderscore {
		return Key{Kind: KindNamed, Name: CtrlUnderscore}
	}

	switch key {
	case tcell.KeyEnter:
		return Key{Kind: KindNamed, Name: Enter}
	case tcell.KeyTab:
		return Key{Kind: KindNamed, Name: Tab}
	case tcell.KeyBacktab:
		return Key{Kind: KindNamed, Name: ShiftTab}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Key{Kind: KindNamed, Name: Backspace}
	case tcell.KeyDelete:
		return Key{Kind: KindNamed, Name: Delete}
	case tcell.KeyEscape:
		return Key{Kind: KindNamed, Name: Escape}
	case tcell.KeyHome:
		return Key{Kind: KindNamed, Name: Home}
	case tcell.KeyEnd:
		return Key{Kind: KindNamed, Name: End}
	case tcell.KeyPgUp:
		return Key{Kind: KindNamed, Name: PageUp}
	case tcell.KeyPgDn:
		return Key{Kind: KindNamed, Name: PageDown}
	case tcell.KeyUp:
		return Key{Kind: KindNamed, Name: ArrowUp}
	case tcell.KeyDown:
		return Key{Kind: KindNamed, Name: ArrowDown}
	case tcell.KeyLeft:
		return Key{Kind: KindNamed, Name: ArrowLeft}
	case tcell.KeyRight:
		return Key{Kind: KindNamed, Name: ArrowRight}
	}

	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return Key{Kind: KindCtrl, Ctrl: byte('a' + (key - tcell.KeyCtrlA))}
	}

	if key == tcell.KeyRune {
		r := ev.Rune()
		if r >= 0 && r < 128 {
			return Key{Kind: KindChar, Char: byte(r)}
		}
		return Key{Kind: KindCodepoint, Cp: r}
	}

	return Key{Kind: KindUnknown}
}
