package automaton

import (
	"fmt"
	"strings"

	"github.com/npillmayer/lexgen/charclass"
)

// Op is the operator of a pattern node.
type Op uint8

// Pattern operators.
const (
	OpChars Op = iota
	OpDot
	OpEmpty
	OpCat
	OpOr
	OpStar
	OpPlus
	OpOpt
	OpRepeat
)

// Pattern is a node of a regular expression tree over codepoint sets.
// Patterns are immutable and may be shared between rules.
type Pattern struct {
	op       Op
	set      *charclass.IntervalSet // OpChars
	children []*Pattern
	min, max int // OpRepeat; max < 0 means unbounded
}

// Op returns the operator of a pattern node.
func (p *Pattern) Op() Op {
	return p.op
}

// Children returns the sub-patterns of a pattern node.
func (p *Pattern) Children() []*Pattern {
	return p.children
}

// Chars matches a single codepoint of set.
func Chars(set *charclass.IntervalSet) *Pattern {
	return &Pattern{op: OpChars, set: set}
}

// Range matches a single codepoint in [lo…hi].
func Range(lo, hi rune) *Pattern {
	return Chars(charclass.NewIntervalSet(charclass.Interval{Start: lo, End: hi}))
}

// AnyOf matches a single codepoint contained in s.
func AnyOf(s string) *Pattern {
	return Chars(charclass.SetOf(s))
}

// Lit matches the literal string s.
func Lit(s string) *Pattern {
	var ps []*Pattern
	for _, r := range s {
		ps = append(ps, Chars(charclass.NewIntervalSet(charclass.Single(r))))
	}
	return Cat(ps...)
}

// Dot matches any codepoint except line terminators. Which codepoints count as
// line terminators is decided at build time.
func Dot() *Pattern {
	return &Pattern{op: OpDot}
}

// Empty matches the empty string.
func Empty() *Pattern {
	return &Pattern{op: OpEmpty}
}

// Cat matches the concatenation of ps.
func Cat(ps ...*Pattern) *Pattern {
	switch len(ps) {
	case 0:
		return Empty()
	case 1:
		return ps[0]
	}
	return &Pattern{op: OpCat, children: ps}
}

// Or matches any of ps. Alternatives are numbered in the order given.
func Or(ps ...*Pattern) *Pattern {
	if len(ps) == 1 {
		return ps[0]
	}
	return &Pattern{op: OpOr, children: ps}
}

// Star matches zero or more repetitions of p.
func Star(p *Pattern) *Pattern {
	return &Pattern{op: OpStar, children: []*Pattern{p}}
}

// Plus matches one or more repetitions of p.
func Plus(p *Pattern) *Pattern {
	return &Pattern{op: OpPlus, children: []*Pattern{p}}
}

// Opt matches p or the empty string.
func Opt(p *Pattern) *Pattern {
	return &Pattern{op: OpOpt, children: []*Pattern{p}}
}

// Repeat matches between min and max repetitions of p. max < 0 means no upper
// bound.
func Repeat(p *Pattern, min, max int) *Pattern {
	return &Pattern{op: OpRepeat, children: []*Pattern{p}, min: min, max: max}
}

// check validates a pattern tree.
func (p *Pattern) check() error {
	if p == nil {
		return configError(BadPattern, "nil pattern")
	}
	switch p.op {
	case OpChars:
		if p.set == nil {
			return configError(BadPattern, "character pattern without set")
		}
		if p.set.IsEmpty() { // inverted range or surrogates only
			return configError(UnsupportedRange, "character pattern matches no codepoint")
		}
	case OpCat, OpOr:
		if len(p.children) == 0 {
			return configError(BadPattern, "%s without operands", p.op)
		}
	case OpStar, OpPlus, OpOpt:
		if len(p.children) != 1 {
			return configError(BadPattern, "%s needs exactly one operand", p.op)
		}
	case OpRepeat:
		if len(p.children) != 1 || p.min < 0 || (p.max >= 0 && p.max < p.min) {
			return configError(BadPattern, "bad repetition {%d,%d}", p.min, p.max)
		}
	}
	for _, c := range p.children {
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}

// FixedLength returns the number of codepoints every match of p has, if all
// matches of p have the same length.
func FixedLength(p *Pattern) (int, bool) {
	switch p.op {
	case OpChars, OpDot:
		return 1, true
	case OpEmpty:
		return 0, true
	case OpCat:
		n := 0
		for _, c := range p.children {
			l, ok := FixedLength(c)
			if !ok {
				return 0, false
			}
			n += l
		}
		return n, true
	case OpOr:
		n := -1
		for _, c := range p.children {
			l, ok := FixedLength(c)
			if !ok || (n >= 0 && l != n) {
				return 0, false
			}
			n = l
		}
		return n, true
	case OpStar, OpPlus, OpOpt:
		if l, ok := FixedLength(p.children[0]); ok && l == 0 {
			return 0, true
		}
		return 0, false
	case OpRepeat:
		l, ok := FixedLength(p.children[0])
		if !ok {
			return 0, false
		}
		if l == 0 {
			return 0, true
		}
		if p.min != p.max {
			return 0, false
		}
		return l * p.min, true
	}
	panic(fmt.Sprintf("unknown pattern operator %d", p.op))
}

// Reverse returns a pattern matching the reversed matches of p.
func Reverse(p *Pattern) *Pattern {
	switch p.op {
	case OpChars, OpDot, OpEmpty:
		return p
	case OpCat:
		rev := make([]*Pattern, len(p.children))
		for i, c := range p.children {
			rev[len(rev)-1-i] = Reverse(c)
		}
		return &Pattern{op: OpCat, children: rev}
	}
	rev := make([]*Pattern, len(p.children))
	for i, c := range p.children {
		rev[i] = Reverse(c)
	}
	return &Pattern{op: p.op, children: rev, min: p.min, max: p.max}
}

// sets calls f for every codepoint set referenced by p. dot is the set to use
// for OpDot.
func (p *Pattern) sets(dot *charclass.IntervalSet, f func(*charclass.IntervalSet)) {
	switch p.op {
	case OpChars:
		f(p.set)
	case OpDot:
		f(dot)
	}
	for _, c := range p.children {
		c.sets(dot, f)
	}
}

func (op Op) String() string {
	switch op {
	case OpChars:
		return "chars"
	case OpDot:
		return "dot"
	case OpEmpty:
		return "empty"
	case OpCat:
		return "cat"
	case OpOr:
		return "or"
	case OpStar:
		return "star"
	case OpPlus:
		return "plus"
	case OpOpt:
		return "opt"
	case OpRepeat:
		return "repeat"
	}
	return fmt.Sprintf("op(%d)", op)
}

func (p *Pattern) String() string {
	var b strings.Builder
	p.format(&b)
	return b.String()
}

func (p *Pattern) format(b *strings.Builder) {
	switch p.op {
	case OpChars:
		ivs := p.set.Intervals()
		if len(ivs) == 1 && ivs[0].Start == ivs[0].End && ivs[0].Start > 32 && ivs[0].Start < 127 {
			b.WriteRune(ivs[0].Start)
			return
		}
		b.WriteString(p.set.String())
	case OpDot:
		b.WriteString(".")
	case OpEmpty:
		b.WriteString("()")
	case OpCat:
		for _, c := range p.children {
			c.format(b)
		}
	case OpOr:
		b.WriteString("(")
		for i, c := range p.children {
			if i > 0 {
				b.WriteString("|")
			}
			c.format(b)
		}
		b.WriteString(")")
	default:
		b.WriteString("(")
		p.children[0].format(b)
		b.WriteString(")")
		switch p.op {
		case OpStar:
			b.WriteString("*")
		case OpPlus:
			b.WriteString("+")
		case OpOpt:
			b.WriteString("?")
		case OpRepeat:
			if p.max < 0 {
				fmt.Fprintf(b, "{%d,}", p.min)
			} else {
				fmt.Fprintf(b, "{%d,%d}", p.min, p.max)
			}
		}
	}
}
