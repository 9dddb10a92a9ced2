package regex

// maxPositions bounds how many repetitions a single quantified instruction
// will greedily collect (spec.md §4.4's PositionCollector). matchBudget is
// the total number of backtracking steps a single match_at attempt may
// spend across ALL quantifiers combined; it is what actually defends
// against ".*.*.*"-style blowups, since without a shared budget, capping
// each quantifier independently still lets nested quantifiers multiply out
// to an intractable number of attempts. Exhausting either cap makes this
// match_at attempt report "no match" rather than keep searching — per
// spec.md, deterministic bounded time beats exhaustive correctness here.
const maxPositions = 4096
const matchBudget = 200000

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func matchAtom(in inst, b byte) bool {
	switch in.kind {
	case opLiteral:
		return b == in.lit
	case opAny:
		return b != '\n'
	case opClass:
		return in.class.has(b) != in.negated
	case opDigit:
		return b >= '0' && b <= '9'
	case opNotDigit:
		return !(b >= '0' && b <= '9')
	case opWord:
		return isWordByte(b)
	case opNotWord:
		return !isWordByte(b)
	case opSpace:
		return isSpaceByte(b)
	case opNotSpace:
		return !isSpaceByte(b)
	}
	return false
}

func atLineStart(text []byte, pos int) bool {
	return pos == 0 || (pos > 0 && pos <= len(text) && text[pos-1] == '\n')
}

func atLineEnd(text []byte, pos int) bool {
	return pos == len(text) || (pos >= 0 && pos < len(text) && text[pos] == '\n')
}

// matcher threads a shared backtrack-step budget through one match_at
// attempt, so nested quantifiers can't multiply their work unboundedly.
type matcher struct {
	insts  []inst
	text   []byte
	budget int
}

// match attempts insts[ip:] against text starting at pos, returning the end
// position of the overall match on success.
func (m *matcher) match(ip, pos int) (int, bool) {
	if m.budget <= 0 {
		return 0, false
	}
	m.budget--

	if ip >= len(m.insts) {
		return pos, true
	}
	in := m.insts[ip]

	switch in.kind {
	case opAnchorStart:
		if !atLineStart(m.text, pos) {
			return 0, false
		}
		return m.match(ip+1, pos)
	case opAnchorEnd:
		if !atLineEnd(m.text, pos) {
			return 0, false
		}
		return m.match(ip+1, pos)
	}

	if in.min == unquantified && in.max == unquantified {
		if pos >= len(m.text) || !matchAtom(in, m.text[pos]) {
			return 0, false
		}
		return m.match(ip+1, pos+1)
	}

	// Quantified repetition: greedily collect as many successive match
	// positions as allowed, then backtrack from the longest down to the
	// shortest (but never below min) trying the rest of the program.
	positions := make([]int, 1, 32)
	positions[0] = pos
	cur := pos
	count := 0
	for (in.max < 0 || count < in.max) && cur < len(m.text) && matchAtom(in, m.text[cur]) {
		if len(positions) >= maxPositions || m.budget <= 0 {
			return 0, false
		}
		m.budget--
		cur++
		count++
		positions = append(positions, cur)
	}
	if count < in.min {
		return 0, false
	}
	for i := len(positions) - 1; i >= in.min; i-- {
		if end, ok := m.match(ip+1, positions[i]); ok {
			return end, true
		}
	}
	return 0, false
}

func matchAt(insts []inst, text []byte, pos int) (int, bool) {
	m := &matcher{insts: insts, text: text, budget: matchBudget}
	return m.match(0, pos)
}

// Search scans forward from start for the leftmost match, returning its
// [start, end) byte range.
func (p *Program) Search(text []byte, start int) (matchStart, matchEnd int, ok bool) {
	if start < 0 {
		start = 0
	}
	for pos := start; pos <= len(text); pos++ {
		if p.anchoredStart && !atLineStart(text, pos) {
			continue
		}
		if end, matched := matchAt(p.insts, text, pos); matched {
			return pos, end, true
		}
	}
	return 0, 0, false
}

// SearchBackward scans candidate start positions from start-1 down to 0,
// trying a match at each; the first (i.e. rightmost) match wins.
func (p *Program) SearchBackward(text []byte, start int) (matchStart, matchEnd int, ok bool) {
	if start > len(text) {
		start = len(text)
	}
	for pos := start - 1; pos >= 0; pos-- {
		if p.anchoredStart && !atLineStart(text, pos) {
			continue
		}
		if end, matched := matchAt(p.insts, text, pos); matched {
			return pos, end, true
		}
	}
	return 0, 0, false
}
