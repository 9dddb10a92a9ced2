package regex

// Compile performs a left-to-right pass over pattern: each atom (literal
// byte, '.', a character class, an escape shortcut) is emitted as an
// instruction; if the following character is a quantifier (* + ?), the
// just-emitted instruction's repetition range is rewritten in place
// instead of emitting a new instruction. A quantifier with nothing before
// it becomes a literal.
func Compile(pattern string) (*Program, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	p := &Program{}
	src := []byte(pattern)
	i := 0
	for i < len(src) {
		var in inst
		var consumed int

		switch c := src[i]; {
		case c == '^' && len(p.insts) == 0:
			in = inst{kind: opAnchorStart, min: unquantified, max: unquantified}
			consumed = 1
		case c == '$' && i == len(src)-1:
			in = inst{kind: opAnchorEnd, min: unquantified, max: unquantified}
			consumed = 1
		case c == '.':
			in = inst{kind: opAny, min: unquantified, max: unquantified}
			consumed = 1
		case c == '[':
			in, consumed = compileClass(src[i:])
		case c == '\\':
			in, consumed = compileEscape(src[i:])
		case c == '*' || c == '+' || c == '?':
			// A lone quantifier with nothing preceding it is a literal.
			in = inst{kind: opLiteral, lit: c, min: unquantified, max: unquantified}
			consumed = 1
		default:
			in = inst{kind: opLiteral, lit: c, min: unquantified, max: unquantified}
			consumed = 1
		}
		i += consumed

		// Quantifier application: only atoms (not anchors) are quantifiable.
		if i < len(src) && in.kind != opAnchorStart && in.kind != opAnchorEnd {
			switch src[i] {
			case '*':
				in.min, in.max = 0, inf
				i++
			case '+':
				in.min, in.max = 1, inf
				i++
			case '?':
				in.min, in.max = 0, 1
				i++
			}
		}
		p.insts = append(p.insts, in)
	}
	p.anchoredStart = len(p.insts) > 0 && p.insts[0].kind == opAnchorStart
	return p, nil
}

// compileClass parses a "[...]" character class starting at src[0] == '['.
// Unterminated classes close at end-of-pattern (spec.md §4.4).
func compileClass(src []byte) (inst, int) {
	in := inst{kind: opClass, min: unquantified, max: unquantified}
	i := 1
	if i < len(src) && src[i] == '^' {
		in.negated = true
		i++
	}
	first := true
	for i < len(src) && (src[i] != ']' || first) {
		first = false
		if src[i] == '\\' && i+1 < len(src) {
			addEscapeToClass(&in.class, src[i+1])
			i += 2
			continue
		}
		if i+2 < len(src) && src[i+1] == '-' && src[i+2] != ']' {
			in.class.setRange(src[i], src[i+2])
			i += 3
			continue
		}
		in.class.set(src[i])
		i++
	}
	if i < len(src) && src[i] == ']' {
		i++
	}
	return in, i
}

func addEscapeToClass(c *classSet, esc byte) {
	switch esc {
	case 'd':
		c.setRange('0', '9')
	case 'w':
		c.setRange('a', 'z')
		c.setRange('A', 'Z')
		c.setRange('0', '9')
		c.set('_')
	case 's':
		for _, b := range []byte{' ', '\t', '\n', '\r', '\f', '\v'} {
			c.set(b)
		}
	default:
		c.set(esc)
	}
}

// compileEscape handles "\<escape>" starting at src[0] == '\\'. A trailing
// lone backslash (no following byte) is tolerated as a literal backslash.
func compileEscape(src []byte) (inst, int) {
	base := inst{min: unquantified, max: unquantified}
	if len(src) < 2 {
		base.kind = opLiteral
		base.lit = '\\'
		return base, 1
	}
	switch src[1] {
	case 'd':
		base.kind = opDigit
	case 'D':
		base.kind = opNotDigit
	case 'w':
		base.kind = opWord
	case 'W':
		base.kind = opNotWord
	case 's':
		base.kind = opSpace
	case 'S':
		base.kind = opNotSpace
	default:
		// Invalid/unknown escape tolerated as a literal of the escaped byte.
		base.kind = opLiteral
		base.lit = src[1]
	}
	return base, 2
}
