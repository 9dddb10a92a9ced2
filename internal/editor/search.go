package editor

// enterISearch starts incremental search in the given direction from the
// current cursor position, per spec.md §4.6.
func (c *Controller) enterISearch(forward bool) {
	if forward {
		c.mode = ModeISearchForward
	} else {
		c.mode = ModeISearchBackward
	}
	c.searchBuf = c.searchBuf[:0]
	c.searchForward = forward
	c.searchStartPos = c.view.CursorBytePos()
	c.message = ""
	c.view.SearchPattern = nil
}

// appendISearchChar extends the search pattern by one byte and re-searches
// from search_start_pos, per spec.md: "each typed character extends the
// pattern and re-runs search from the original search_start_pos".
func (c *Controller) appendISearchChar(b byte) {
	c.searchBuf = append(c.searchBuf, b)
	c.runSearchFrom(c.searchStartPos)
}

func (c *Controller) backspaceISearch() {
	if len(c.searchBuf) == 0 {
		return
	}
	c.searchBuf = c.searchBuf[:len(c.searchBuf)-1]
	c.runSearchFrom(c.searchStartPos)
}

func (c *Controller) runSearchFrom(from int) {
	c.view.SearchPattern = c.searchBuf
	if len(c.searchBuf) == 0 {
		c.message = ""
		c.jumpToBytePos(c.searchStartPos)
		return
	}
	var pos int
	var ok bool
	if c.searchForward {
		pos, ok = c.table.SearchForward(c.searchBuf, from)
		if !ok {
			pos, ok = c.table.SearchForward(c.searchBuf, 0) // wraparound
		}
	} else {
		pos, ok = c.table.SearchBackward(c.searchBuf, from)
		if !ok {
			pos, ok = c.table.SearchBackward(c.searchBuf, c.table.Len())
		}
	}
	if ok {
		c.message = ""
		c.jumpToBytePos(pos)
		c.view.SearchCurrentMatchPos = pos
	} else {
		c.message = " (Failing I-search)"
	}
}

// stepISearch (Ctrl-S/Ctrl-R while already searching) advances to the
// next/previous match from just past the current one.
func (c *Controller) stepISearch(forward bool) {
	if len(c.searchBuf) == 0 {
		return
	}
	c.searchForward = forward
	pos := c.view.CursorBytePos()
	from := pos + 1
	if !forward {
		from = pos - 1
	}
	c.runSearchFrom(from)
}

func (c *Controller) confirmISearch() {
	c.lastSearch = append([]byte(nil), c.searchBuf...)
	c.view.SearchPattern = nil
	c.view.SearchCurrentMatchPos = -1
	c.cancelToNormal()
}

func (c *Controller) cancelISearch() {
	c.view.SearchPattern = nil
	c.view.SearchCurrentMatchPos = -1
	c.jumpToBytePos(c.searchStartPos)
	c.cancelToNormal()
}

// performSearch is the non-incremental Ctrl-S/Ctrl-R-while-in-Normal-mode
// entry point spec.md §4.6 describes: search using last_search from
// cursor±1, wrapping on miss, a transient message on total failure.
func (c *Controller) performSearch(forward bool, skipCurrent bool) {
	if len(c.lastSearch) == 0 {
		c.enterISearch(forward)
		return
	}
	pos := c.view.CursorBytePos()
	from := pos
	if skipCurrent {
		if forward {
			from = pos + 1
		} else {
			from = pos - 1
		}
	}
	var found int
	var ok bool
	if forward {
		found, ok = c.table.SearchForward(c.lastSearch, from)
		if !ok {
			found, ok = c.table.SearchForward(c.lastSearch, 0)
		}
	} else {
		found, ok = c.table.SearchBackward(c.lastSearch, from)
		if !ok {
			found, ok = c.table.SearchBackward(c.lastSearch, c.table.Len())
		}
	}
	if ok {
		c.jumpToBytePos(found)
		c.view.SearchCurrentMatchPos = found
	} else {
		c.setMessage("Failing I-search: %s", c.lastSearch)
	}
}
