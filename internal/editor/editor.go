package editor

import (
	"fmt"

	"github.com/bethropolis/glyph/internal/encoding"
	"github.com/bethropolis/glyph/internal/keys"
	"github.com/bethropolis/glyph/internal/lang"
	"github.com/bethropolis/glyph/internal/logger"
	"github.com/bethropolis/glyph/internal/piece"
	"github.com/bethropolis/glyph/internal/view"
)

// Mode is spec.md §3's EditorState.mode: the modal states the Controller
// dispatches keys through.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrefixX
	ModePrefixR
	ModeQuitConfirm
	ModeFilenameInput
	ModeISearchForward
	ModeISearchBackward
)

// Config holds everything a Controller needs at construction.
type Config struct {
	Table           *piece.Table
	View            *view.View
	Filename        string
	ReadOnly        bool
	Detected        encoding.Detected
	SystemClipboard bool
	UndoLimit       int
}

// Controller is spec.md §4.6: it owns the PieceTable exclusively, drives
// the View, and holds every piece of modal/editing state (mode, mark,
// kill-ring, undo log, mini-buffer) that only ever runs on the single
// event-loop goroutine.
//
// Grounded on the teacher's internal/modehandler.ModeHandler: a mode enum,
// a HandleKeyEvent entry point that dispatches to one handler per mode,
// and status-bar messages surfaced on every outcome. Generalized from the
// teacher's flat Action enum (decided by InputProcessor) to Emacs-style
// dispatch directly over keys.Key, since spec.md's bindings are richer
// than a lookup table (word motion, rectangle kill, incremental search).
type Controller struct {
	table *piece.Table
	view  *view.View

	filename string
	readOnly bool
	detected encoding.Detected

	mode Mode
	undo *undoLog
	kill *killRing

	mark    int
	markSet bool

	miniBuffer     string
	filenameForSave bool // mini-buffer reached via the quit flow (save-then-quit)
	quitPending     bool

	searchBuf       []byte
	searchForward   bool
	searchStartPos  int
	lastSearch      []byte

	message string

	// Quit is set true once the Controller has decided the event loop
	// should stop; cmd/glyph's main loop polls it after each key.
	Quit bool
}

// New constructs a Controller over an already-loaded table and view.
func New(cfg Config) *Controller {
	c := &Controller{
		table:    cfg.Table,
		view:     cfg.View,
		filename: cfg.Filename,
		readOnly: cfg.ReadOnly,
		detected: cfg.Detected,
		undo:     newUndoLog(cfg.UndoLimit),
		kill:     newKillRing(cfg.SystemClipboard),
	}
	return c
}

// SetLanguage installs the comment-span definition used by the View.
func (c *Controller) SetLanguage(def *lang.Definition) { c.view.SetLanguage(def) }

// Filename reports the path the buffer will save to, or "" if unset.
func (c *Controller) Filename() string { return c.filename }

// Modified reports whether there are any undo entries (spec.md §4.6: the
// modified flag is exactly "the undo stack is non-empty").
func (c *Controller) Modified() bool { return c.undo.modified() }

// StatusFields builds the View's status-bar input from current state.
func (c *Controller) StatusFields() view.StatusFields {
	line := c.view.FileLine() + 1
	col := c.view.CursorX + 1
	name := c.filename
	if name == "" {
		name = "[No Name]"
	}
	return view.StatusFields{
		Filename: name,
		ReadOnly: c.readOnly,
		Modified: c.Modified(),
		Line:     line,
		Col:      col,
		Encoding: c.detected.CharmapName,
		CRLF:     c.detected.LineEnding == encoding.CRLF,
		Message:  c.currentMessage(),
	}
}

func (c *Controller) currentMessage() string {
	switch c.mode {
	case ModeFilenameInput:
		return "Save as: " + c.miniBuffer
	case ModeISearchForward:
		return "I-search: " + string(c.searchBuf) + c.message
	case ModeISearchBackward:
		return "I-search backward: " + string(c.searchBuf) + c.message
	case ModeQuitConfirm:
		return "Save changes before quitting? (y/n/c)"
	case ModePrefixX:
		return "C-x-"
	case ModePrefixR:
		return "C-x r-"
	}
	return c.message
}

func (c *Controller) setMessage(format string, args ...any) {
	c.message = fmt.Sprintf(format, args...)
}

func (c *Controller) clearMessage() { c.message = "" }

// HandleKey dispatches one key through the current mode and returns
// whether anything changed that warrants a redraw. Every mode handler is
// called from this single entry point, mirroring the teacher's
// HandleKeyEvent → per-mode handler shape.
func (c *Controller) HandleKey(k keys.Key) bool {
	switch c.mode {
	case ModeNormal:
		return c.handleNormal(k)
	case ModePrefixX:
		return c.handlePrefixX(k)
	case ModePrefixR:
		return c.handlePrefixR(k)
	case ModeQuitConfirm:
		return c.handleQuitConfirm(k)
	case ModeFilenameInput:
		return c.handleFilenameInput(k)
	case ModeISearchForward, ModeISearchBackward:
		return c.handleISearch(k)
	default:
		logger.Warnf("editor: unknown mode %v", c.mode)
		c.mode = ModeNormal
		return true
	}
}

func (c *Controller) enterPrefixX() {
	c.mode = ModePrefixX
	c.clearMessage()
}

func (c *Controller) cancelToNormal() {
	c.mode = ModeNormal
	c.clearMessage()
	c.filenameForSave = false
	c.quitPending = false
}
