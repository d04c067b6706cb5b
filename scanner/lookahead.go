package scanner

import (
	"unicode/utf8"
)

// GeneralLookahead finds the end of a match for a rule r1/r2 with trailing
// context r2, where neither r1 nor r2 has a fixed length. text[start:end] is
// the input matched by r1·r2. entry is the index of the entry state of the
// forward automaton for r1; entry+1 is the entry of the backward automaton
// for reverse(r2).
//
// A forward pass marks every position p in [start…end] at which r1 matches
// text[start:p]. A backward pass then runs the reversed trailing context from
// end, stopping at the first position which is marked and at which the
// backward automaton is final. This position is the new end of the match.
//
// fin is scratch space, grown if necessary and returned for re-use. It must
// not be shared between scanners.
func GeneralLookahead(t *Tables, entry int, text []byte, start, end int, fin []bool) (int, []bool) {
	n := end - start + 1
	if cap(fin) < n {
		fin = make([]bool, n, 2*n)
	}
	fin = fin[:n]
	state := int(t.lexstate[entry])
	pos := start
	for state != NoTarget && pos < end {
		fin[pos-start] = t.isFinal(state)
		r, size := utf8.DecodeRune(text[pos:end])
		pos += size
		state = t.next(state, r)
	}
	if state != NoTarget {
		fin[pos-start] = t.isFinal(state)
		pos++
	}
	for ; pos <= end; pos++ {
		fin[pos-start] = false
	}
	state = int(t.lexstate[entry+1])
	pos = end
	for !fin[pos-start] || !t.isFinal(state) {
		if pos <= start {
			tracer().Errorf("general lookahead found no split point in %q", text[start:end])
			return end, fin
		}
		r, size := utf8.DecodeLastRune(text[start:pos])
		pos -= size
		if state = t.next(state, r); state == NoTarget {
			tracer().Errorf("general lookahead found no split point in %q", text[start:end])
			return end, fin
		}
	}
	return pos, fin
}
