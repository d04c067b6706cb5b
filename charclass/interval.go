package charclass

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Bounds of the codepoint alphabet.
const (
	MaxCodepoint rune = unicode.MaxRune
	SurrogateLo  rune = 0xD800
	SurrogateHi  rune = 0xDFFF
)

// IsSurrogate is a predicate: is r within the UTF-16 surrogate range?
func IsSurrogate(r rune) bool {
	return r >= SurrogateLo && r <= SurrogateHi
}

// Interval is an inclusive range of codepoints.
type Interval struct {
	Start rune
	End   rune
}

// Single creates an interval for a single codepoint.
func Single(r rune) Interval {
	return Interval{Start: r, End: r}
}

// Contains returns true if r is contained in the interval.
func (iv Interval) Contains(r rune) bool {
	return iv.Start <= r && r <= iv.End
}

// Len returns the number of codepoints in the interval.
func (iv Interval) Len() int {
	return int(iv.End-iv.Start) + 1
}

func (iv Interval) String() string {
	if iv.Start == iv.End {
		return "[" + printable(iv.Start) + "]"
	}
	return "[" + printable(iv.Start) + "-" + printable(iv.End) + "]"
}

func printable(r rune) string {
	if r > 31 && r < 127 {
		return fmt.Sprintf("'%c'", r)
	}
	return fmt.Sprintf("%d", r)
}

// --- Interval sets ---------------------------------------------------------

// IntervalSet is a set of codepoints, stored as a sorted list of intervals.
// Intervals in a set never overlap and never touch. Surrogate codepoints are
// silently dropped on insertion.
//
// The zero value is an empty set, ready to use.
type IntervalSet struct {
	ivs []Interval
}

// NewIntervalSet creates a set from a list of intervals.
func NewIntervalSet(ivs ...Interval) *IntervalSet {
	set := &IntervalSet{}
	for _, iv := range ivs {
		set.Add(iv.Start, iv.End)
	}
	return set
}

// SetOf creates a set containing the codepoints of a string.
func SetOf(s string) *IntervalSet {
	set := &IntervalSet{}
	for _, r := range s {
		set.AddRune(r)
	}
	return set
}

// Add inserts the range [start…end] into the set.
// Ranges with start > end are ignored.
func (set *IntervalSet) Add(start, end rune) *IntervalSet {
	if start > end || end < 0 {
		return set
	}
	if start < 0 {
		start = 0
	}
	if start <= SurrogateHi && end >= SurrogateLo { // cut out surrogates
		if start < SurrogateLo {
			set.insert(Interval{start, SurrogateLo - 1})
		}
		if end > SurrogateHi {
			set.insert(Interval{SurrogateHi + 1, end})
		}
		return set
	}
	set.insert(Interval{start, end})
	return set
}

// AddRune inserts a single codepoint into the set.
func (set *IntervalSet) AddRune(r rune) *IntervalSet {
	return set.Add(r, r)
}

func (set *IntervalSet) insert(iv Interval) {
	i := sort.Search(len(set.ivs), func(i int) bool {
		return set.ivs[i].End+1 >= iv.Start
	})
	j := i
	for j < len(set.ivs) && set.ivs[j].Start <= iv.End+1 {
		if set.ivs[j].Start < iv.Start {
			iv.Start = set.ivs[j].Start
		}
		if set.ivs[j].End > iv.End {
			iv.End = set.ivs[j].End
		}
		j++
	}
	// replace ivs[i:j] by iv
	rest := append([]Interval{iv}, set.ivs[j:]...)
	set.ivs = append(set.ivs[:i], rest...)
}

// Union adds all codepoints of other to set.
func (set *IntervalSet) Union(other *IntervalSet) *IntervalSet {
	if other == nil {
		return set
	}
	for _, iv := range other.ivs {
		set.insert(iv)
	}
	return set
}

// Complement returns a new set containing all codepoints in [0…max] which are
// not in set (and not surrogates).
func (set *IntervalSet) Complement(max rune) *IntervalSet {
	c := &IntervalSet{}
	next := rune(0)
	for _, iv := range set.ivs {
		if iv.Start > max {
			break
		}
		if iv.Start > next {
			c.Add(next, iv.Start-1)
		}
		next = iv.End + 1
	}
	if next <= max {
		c.Add(next, max)
	}
	return c
}

// Contains returns true if r is in set.
func (set *IntervalSet) Contains(r rune) bool {
	i := sort.Search(len(set.ivs), func(i int) bool {
		return set.ivs[i].End >= r
	})
	return i < len(set.ivs) && set.ivs[i].Start <= r
}

// Intervals returns the intervals of the set in ascending order.
// Clients must not modify the slice.
func (set *IntervalSet) Intervals() []Interval {
	if set == nil {
		return nil
	}
	return set.ivs
}

// IsEmpty is a predicate.
func (set *IntervalSet) IsEmpty() bool {
	return set == nil || len(set.ivs) == 0
}

// Max returns the largest codepoint in the set, or -1 for an empty set.
func (set *IntervalSet) Max() rune {
	if set.IsEmpty() {
		return -1
	}
	return set.ivs[len(set.ivs)-1].End
}

// Equals returns true if both sets contain the same codepoints.
func (set *IntervalSet) Equals(other *IntervalSet) bool {
	if len(set.Intervals()) != len(other.Intervals()) {
		return false
	}
	for i, iv := range set.Intervals() {
		if iv != other.ivs[i] {
			return false
		}
	}
	return true
}

// Copy returns a copy of the set.
func (set *IntervalSet) Copy() *IntervalSet {
	c := &IntervalSet{ivs: make([]Interval, len(set.ivs))}
	copy(c.ivs, set.ivs)
	return c
}

func (set *IntervalSet) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, iv := range set.Intervals() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(iv.String())
	}
	b.WriteString("}")
	return b.String()
}

// --- Predefined sets -------------------------------------------------------

// Line terminators recognized by scanners.
const lineTerminators = "\n\r\u000B\u000C\u0085\u2028\u2029"

// Dot returns the set matched by the '.' meta character. In legacy mode dot
// matches everything but '\n', otherwise everything but any line terminator.
func Dot(legacy bool, max rune) *IntervalSet {
	if legacy {
		return SetOf("\n").Complement(max)
	}
	return SetOf(lineTerminators).Complement(max)
}

// FromRangeTable converts a Unicode range table from package unicode into an
// interval set, cut at max.
func FromRangeTable(tab *unicode.RangeTable, max rune) *IntervalSet {
	set := &IntervalSet{}
	add := func(lo, hi, stride rune) {
		if lo > max {
			return
		}
		if hi > max {
			hi = max
		}
		if stride == 1 {
			set.Add(lo, hi)
			return
		}
		for r := lo; r <= hi; r += stride {
			set.AddRune(r)
		}
	}
	for _, r16 := range tab.R16 {
		add(rune(r16.Lo), rune(r16.Hi), rune(r16.Stride))
	}
	for _, r32 := range tab.R32 {
		add(rune(r32.Lo), rune(r32.Hi), rune(r32.Stride))
	}
	return set
}
