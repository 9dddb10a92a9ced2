// Package editor is the Controller spec.md §4.6 describes: key dispatch
// across the modal states, editing primitives layered over a piece.Table,
// the undo log, and the mark/kill-ring. Grounded on the teacher's
// internal/modehandler (mode-switch-on-key dispatch shape) and
// internal/core/editor_methods.go (thin delegating methods, status-bar
// messages on every outcome), generalized from the teacher's action-enum
// dispatch to Emacs-style bindings over the abstract keys.Key.
package editor

import "github.com/bethropolis/glyph/internal/piece"

// MaxUndoEntries bounds the undo stack per spec.md §4.6; the oldest entry
// is evicted once the stack grows past it.
const MaxUndoEntries = 1000

type opKind int

const (
	opInsert opKind = iota
	opDelete
)

// undoEntry is spec.md's UndoEntry: an operation plus the cursor position
// to restore when it is undone.
type undoEntry struct {
	kind         opKind
	pos          int
	text         []byte
	cursorBefore int
}

// undoLog holds the undo and redo stacks. Coalescing merges runs of
// same-direction typing/deleting into a single entry so one undo reverts
// a whole run rather than one grapheme at a time.
type undoLog struct {
	undo []undoEntry
	redo []undoEntry
	max  int
}

func newUndoLog(max int) *undoLog {
	if max <= 0 {
		max = MaxUndoEntries
	}
	return &undoLog{max: max}
}

// modified reports whether there is anything to undo; spec.md ties the
// EditorState.modified flag to this directly.
func (u *undoLog) modified() bool { return len(u.undo) > 0 }

func (u *undoLog) push(e undoEntry) {
	u.redo = u.redo[:0]
	if n := len(u.undo); n > 0 {
		last := &u.undo[n-1]
		switch {
		case e.kind == opInsert && last.kind == opInsert && e.pos == last.pos+len(last.text):
			last.text = append(last.text, e.text...)
			return
		case e.kind == opDelete && last.kind == opDelete && e.pos+len(e.text) == last.pos:
			// backspace run: new deletion lands just before the last one
			last.pos = e.pos
			last.text = append(append([]byte(nil), e.text...), last.text...)
			last.cursorBefore = e.cursorBefore
			return
		case e.kind == opDelete && last.kind == opDelete && e.pos == last.pos:
			// forward-delete run: new deletion lands at the same point
			last.text = append(last.text, e.text...)
			return
		}
	}
	u.undo = append(u.undo, e)
	if len(u.undo) > u.max {
		u.undo = u.undo[1:]
	}
}

// undo pops the newest entry, applies its inverse to table, and returns the
// cursor position to restore. ok is false when the stack is empty.
func (u *undoLog) undoOnce(table *piece.Table) (cursorPos int, ok bool) {
	if len(u.undo) == 0 {
		return 0, false
	}
	n := len(u.undo) - 1
	e := u.undo[n]
	u.undo = u.undo[:n]

	switch e.kind {
	case opInsert:
		table.Delete(e.pos, len(e.text))
		u.redo = append(u.redo, undoEntry{kind: opInsert, pos: e.pos, text: e.text, cursorBefore: e.pos + len(e.text)})
	case opDelete:
		table.InsertAt(e.pos, e.text)
		u.redo = append(u.redo, undoEntry{kind: opDelete, pos: e.pos, text: e.text, cursorBefore: e.pos})
	}
	return e.cursorBefore, true
}

func (u *undoLog) redoOnce(table *piece.Table) (cursorPos int, ok bool) {
	if len(u.redo) == 0 {
		return 0, false
	}
	n := len(u.redo) - 1
	e := u.redo[n]
	u.redo = u.redo[:n]

	switch e.kind {
	case opInsert:
		table.InsertAt(e.pos, e.text)
		u.undo = append(u.undo, undoEntry{kind: opInsert, pos: e.pos, text: e.text, cursorBefore: e.cursorBefore})
		cursorPos = e.pos + len(e.text)
	case opDelete:
		table.Delete(e.pos, len(e.text))
		u.undo = append(u.undo, undoEntry{kind: opDelete, pos: e.pos, text: e.text, cursorBefore: e.cursorBefore})
		cursorPos = e.pos
	}
	return cursorPos, true
}
