package charclass

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/exp/slices"
)

// NoClass is returned for codepoints without a character class, i.e.
// surrogates and codepoints beyond the maximum of a partition.
const NoClass = -1

// ErrUnsupportedRange is returned for codepoint ranges a partition cannot
// represent.
var ErrUnsupportedRange = errors.New("unsupported codepoint range")

// ClassInterval is an interval of codepoints, all belonging to character class
// Class.
type ClassInterval struct {
	Interval
	Class int
}

// Partition is a partition of the codepoint alphabet [0…max] into character
// classes. A partition is immutable and may be shared between goroutines.
type Partition struct {
	intervals      []ClassInterval // ascending, covering [0…max] minus surrogates
	classCount     int
	maxCodepoint   rune
	unicodeVersion string
}

// NumClasses returns the number of character classes.
func (p *Partition) NumClasses() int {
	return p.classCount
}

// MaxCodepoint returns the largest codepoint covered by the partition.
func (p *Partition) MaxCodepoint() rune {
	return p.maxCodepoint
}

// UnicodeVersion returns the Unicode version the partition has been built for.
func (p *Partition) UnicodeVersion() string {
	return p.unicodeVersion
}

// Intervals returns the class intervals of the partition in ascending order.
// Adjacent intervals always have different classes. Clients must not modify
// the slice.
func (p *Partition) Intervals() []ClassInterval {
	return p.intervals
}

// ClassOf returns the character class of codepoint r, or NoClass.
// ClassOf performs a binary search over the class intervals.
func (p *Partition) ClassOf(r rune) int {
	if r < 0 || r > p.maxCodepoint || IsSurrogate(r) {
		return NoClass
	}
	i := sort.Search(len(p.intervals), func(i int) bool {
		return p.intervals[i].End >= r
	})
	if i == len(p.intervals) || p.intervals[i].Start > r {
		return NoClass
	}
	return p.intervals[i].Class
}

// ClassesOf returns the classes intersecting set, in ascending order. If set
// has been used to refine the partition, the union of the returned classes is
// exactly set.
func (p *Partition) ClassesOf(set *IntervalSet) []int {
	var classes []int
	for _, iv := range set.Intervals() {
		i := sort.Search(len(p.intervals), func(i int) bool {
			return p.intervals[i].End >= iv.Start
		})
		for ; i < len(p.intervals) && p.intervals[i].Start <= iv.End; i++ {
			classes = append(classes, p.intervals[i].Class)
		}
	}
	slices.Sort(classes)
	return slices.Compact(classes)
}

// Members returns the set of codepoints of character class c.
func (p *Partition) Members(c int) *IntervalSet {
	set := &IntervalSet{}
	for _, iv := range p.intervals {
		if iv.Class == c {
			set.Add(iv.Start, iv.End)
		}
	}
	return set
}

// Representative returns the smallest codepoint of class c, or -1.
func (p *Partition) Representative(c int) rune {
	for _, iv := range p.intervals {
		if iv.Class == c {
			return iv.Start
		}
	}
	return -1
}

func (p *Partition) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "partition(%d classes, max=%#x, unicode %s)", p.classCount,
		p.maxCodepoint, p.unicodeVersion)
	for _, iv := range p.intervals {
		fmt.Fprintf(&b, "\n  %s -> %d", iv.Interval, iv.Class)
	}
	return b.String()
}

// --- Partitioner -----------------------------------------------------------

// Partitioner collects the codepoint sets referenced by scanner rules and
// computes the coarsest partition of the alphabet which does not split any of
// them.
type Partitioner struct {
	max            rune
	unicodeVersion string
	sets           []*IntervalSet
	bounds         *treeset.Set // start points of elementary intervals
}

// NewPartitioner creates a partitioner for the alphabet [0…max]. The Unicode
// version has to be given explicitly; it is recorded in the resulting partition
// and never read from global state.
func NewPartitioner(max rune, unicodeVersion string) (*Partitioner, error) {
	if max < 0 || max > MaxCodepoint {
		return nil, fmt.Errorf("%w: maximum codepoint %#x", ErrUnsupportedRange, max)
	}
	if unicodeVersion == "" {
		return nil, errors.New("partitioner needs a Unicode version")
	}
	p := &Partitioner{
		max:            max,
		unicodeVersion: unicodeVersion,
		bounds:         treeset.NewWith(utils.Int32Comparator),
	}
	p.bounds.Add(rune(0))
	if max >= SurrogateLo {
		p.bounds.Add(SurrogateLo)
		if max > SurrogateHi {
			p.bounds.Add(SurrogateHi + 1)
		}
	}
	return p, nil
}

// Max returns the largest codepoint of the partitioner's alphabet.
func (p *Partitioner) Max() rune {
	return p.max
}

// Refine registers a codepoint set which must not be split by any character
// class. Sets exceeding the alphabet are rejected.
func (p *Partitioner) Refine(set *IntervalSet) error {
	if set.IsEmpty() {
		return nil
	}
	if set.Max() > p.max {
		return fmt.Errorf("%w: %s exceeds maximum codepoint %#x", ErrUnsupportedRange,
			set, p.max)
	}
	p.sets = append(p.sets, set)
	for _, iv := range set.Intervals() {
		p.bounds.Add(iv.Start)
		if iv.End < p.max {
			p.bounds.Add(iv.End + 1)
		}
	}
	return nil
}

// Partition computes the partition for all sets registered so far.
//
// The alphabet is cut into elementary intervals at every boundary of a
// registered set. Elementary intervals with identical membership signatures
// share a class. Classes are numbered in order of their first codepoint.
func (p *Partitioner) Partition() *Partition {
	starts := p.bounds.Values()
	classBySig := make(map[string]int)
	part := &Partition{
		maxCodepoint:   p.max,
		unicodeVersion: p.unicodeVersion,
	}
	sig := make([]byte, len(p.sets))
	for i, v := range starts {
		start := v.(rune)
		end := p.max
		if i+1 < len(starts) {
			end = starts[i+1].(rune) - 1
		}
		if IsSurrogate(start) {
			continue
		}
		for j, set := range p.sets {
			sig[j] = '0'
			if set.Contains(start) {
				sig[j] = '1'
			}
		}
		c, ok := classBySig[string(sig)]
		if !ok {
			c = part.classCount
			classBySig[string(sig)] = c
			part.classCount++
		}
		n := len(part.intervals)
		if n > 0 && part.intervals[n-1].Class == c && part.intervals[n-1].End+1 == start {
			part.intervals[n-1].End = end
			continue
		}
		part.intervals = append(part.intervals, ClassInterval{
			Interval: Interval{Start: start, End: end},
			Class:    c,
		})
	}
	tracer().Infof("alphabet [0…%#x] partitioned into %d classes, %d intervals",
		p.max, part.classCount, len(part.intervals))
	return part
}
