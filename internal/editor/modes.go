package editor

import "github.com/bethropolis/glyph/internal/keys"

// handleNormal is spec.md §4.6's Normal-mode Emacs bindings.
func (c *Controller) handleNormal(k keys.Key) bool {
	c.clearMessage()
	switch k.Kind {
	case keys.KindCtrl:
		switch k.Ctrl {
		case 'f':
			c.view.MoveRight()
		case 'b':
			c.view.MoveLeft()
		case 'n':
			c.view.MoveDown()
		case 'p':
			c.view.MoveUp()
		case 'a':
			c.view.MoveToLineStart()
		case 'e':
			c.view.MoveToLineEnd()
		case 'd':
			c.deleteForward()
		case 'k':
			c.killLine()
		case 'w':
			c.killRegion()
		case 'y':
			c.yank()
		case 's':
			if len(c.lastSearch) > 0 {
				c.performSearch(true, true)
			} else {
				c.enterISearch(true)
			}
		case 'r':
			if len(c.lastSearch) > 0 {
				c.performSearch(false, true)
			} else {
				c.enterISearch(false)
			}
		case 'x':
			c.enterPrefixX()
		default:
			return false
		}
		return true

	case keys.KindNamed:
		switch k.Name {
		case keys.Backspace:
			c.backspace()
		case keys.Delete:
			c.deleteForward()
		case keys.Enter:
			c.insertChar('\n')
		case keys.Tab:
			c.insertChar('\t')
		case keys.ArrowUp:
			c.view.MoveUp()
		case keys.ArrowDown:
			c.view.MoveDown()
		case keys.ArrowLeft:
			c.view.MoveLeft()
		case keys.ArrowRight:
			c.view.MoveRight()
		case keys.Home:
			c.view.MoveToLineStart()
		case keys.End:
			c.view.MoveToLineEnd()
		case keys.PageUp:
			c.view.ScrollViewport(-(c.view.Viewport.Height - 2))
		case keys.PageDown:
			c.view.ScrollViewport(c.view.Viewport.Height - 2)
		case keys.CtrlSpace:
			c.setOrClearMark()
		case keys.CtrlUnderscore:
			c.redoAction()
		default:
			return false
		}
		return true

	case keys.KindAlt:
		switch k.Alt {
		case 'w':
			c.copyRegion()
		case 'f':
			c.moveWordForward()
		case 'b':
			c.moveWordBackward()
		case 'd':
			c.killWordForward()
		case '<':
			c.view.MoveToBufferStart()
		case '>':
			c.view.MoveToBufferEnd()
		case '/':
			c.undoAction()
		default:
			return false
		}
		return true

	case keys.KindChar:
		c.insertChar(rune(k.Char))
		return true

	case keys.KindCodepoint:
		c.insertChar(k.Cp)
		return true
	}
	return false
}

// handlePrefixX is the Ctrl-X prefix map.
func (c *Controller) handlePrefixX(k keys.Key) bool {
	if k.Kind == keys.KindNamed && k.Name == keys.Escape {
		c.cancelToNormal()
		return true
	}
	if k.Kind == keys.KindCtrl {
		switch k.Ctrl {
		case 'g':
			c.cancelToNormal()
			return true
		case 's':
			c.quitPending = false
			if c.filename == "" {
				c.filenameForSave = true
				c.miniBuffer = ""
				c.mode = ModeFilenameInput
			} else {
				c.doSave(c.filename)
				c.mode = ModeNormal
			}
			return true
		case 'c':
			if c.Modified() {
				c.mode = ModeQuitConfirm
			} else {
				c.Quit = true
			}
			return true
		}
		return false
	}
	if k.Kind == keys.KindChar {
		switch k.Char {
		case 'h':
			c.selectAll()
			c.mode = ModeNormal
			return true
		case 'r':
			c.mode = ModePrefixR
			return true
		}
	}
	c.cancelToNormal()
	return true
}

// handlePrefixR is the Ctrl-X r rectangle-kill-ring prefix.
func (c *Controller) handlePrefixR(k keys.Key) bool {
	if k.Kind == keys.KindCtrl && k.Ctrl == 'g' {
		c.cancelToNormal()
		return true
	}
	if k.Kind == keys.KindChar {
		switch k.Char {
		case 'k':
			c.killRectangle()
			c.mode = ModeNormal
			return true
		case 'y':
			c.yankRectangle()
			c.mode = ModeNormal
			return true
		}
	}
	c.cancelToNormal()
	return true
}

// handleQuitConfirm answers the "unsaved changes" prompt reached via
// Ctrl-X Ctrl-C.
func (c *Controller) handleQuitConfirm(k keys.Key) bool {
	if k.Kind != keys.KindChar {
		return false
	}
	switch k.Char {
	case 'y':
		if c.filename == "" {
			c.filenameForSave = true
			c.quitPending = true
			c.miniBuffer = ""
			c.mode = ModeFilenameInput
		} else {
			c.doSave(c.filename)
			c.Quit = true
		}
	case 'n':
		c.Quit = true
	case 'c':
		c.cancelToNormal()
	default:
		return false
	}
	return true
}

// handleFilenameInput edits the mini-buffer for Ctrl-X Ctrl-S's
// prompt-for-filename flow, reached either directly or via quit-confirm.
func (c *Controller) handleFilenameInput(k keys.Key) bool {
	switch k.Kind {
	case keys.KindNamed:
		switch k.Name {
		case keys.Backspace:
			if len(c.miniBuffer) > 0 {
				c.miniBuffer = c.miniBuffer[:len(c.miniBuffer)-1]
			}
			return true
		case keys.Enter:
			name := c.miniBuffer
			c.miniBuffer = ""
			c.mode = ModeNormal
			if name == "" {
				c.setMessage("Save cancelled: no filename")
				c.quitPending = false
				return true
			}
			c.doSave(name)
			if c.quitPending {
				c.Quit = true
			}
			c.quitPending = false
			return true
		case keys.Escape:
			c.cancelToNormal()
			return true
		}
	case keys.KindCtrl:
		if k.Ctrl == 'g' {
			c.cancelToNormal()
			return true
		}
	case keys.KindChar:
		c.miniBuffer += string(rune(k.Char))
		return true
	case keys.KindCodepoint:
		c.miniBuffer += string(k.Cp)
		return true
	}
	return false
}

// handleISearch drives both ISearchForward and ISearchBackward.
func (c *Controller) handleISearch(k keys.Key) bool {
	switch k.Kind {
	case keys.KindNamed:
		switch k.Name {
		case keys.Backspace:
			c.backspaceISearch()
			return true
		case keys.Enter:
			c.confirmISearch()
			return true
		case keys.Escape:
			c.cancelISearch()
			return true
		}
	case keys.KindCtrl:
		switch k.Ctrl {
		case 's':
			c.stepISearch(true)
			return true
		case 'r':
			c.stepISearch(false)
			return true
		case 'g':
			c.cancelISearch()
			return true
		}
	case keys.KindChar:
		c.appendISearchChar(k.Char)
		return true
	}
	return false
}
