package scanner

import (
	"fmt"
	"sort"

	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/lexgen/pack"
	"github.com/npillmayer/lexgen/tables"
)

// NoTarget is the transition target for "no transition".
const NoTarget = -1

// Tables are the unpacked runtime tables of a scanner. Tables are immutable
// and safe for concurrent use by any number of scanners.
type Tables struct {
	cmap       cmap
	action     []int32 // state → label
	rowmap     []int32 // state → offset into trans
	trans      []int32
	attr       []uint8
	lexstate   []int32 // entry index → state
	actions    []tables.ActionEntry
	eof        []int
	defaultEOF int
	lexStates  []string
	numCols    int
}

// Load unpacks a table set.
func Load(ts *tables.TableSet) (*Tables, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	t := &Tables{
		actions:    ts.Actions,
		eof:        ts.EOF,
		defaultEOF: ts.DefaultEOF,
		lexStates:  ts.LexStates,
		numCols:    ts.NumCols,
	}
	var err error
	if t.cmap, err = decodeCMap(ts.CMap, ts.NumCols); err != nil {
		return nil, err
	}
	if t.action, err = unpack32(ts.Action); err != nil {
		return nil, err
	}
	if t.rowmap, err = unpack32(ts.RowMap); err != nil {
		return nil, err
	}
	if t.trans, err = unpack32(ts.Trans); err != nil {
		return nil, err
	}
	if t.lexstate, err = unpack32(ts.LexState); err != nil {
		return nil, err
	}
	attrs, err := ts.Attribute.Unpack()
	if err != nil {
		return nil, err
	}
	t.attr = make([]uint8, len(attrs))
	for i, a := range attrs {
		t.attr[i] = uint8(a)
	}
	if err = t.check(ts.NumStates); err != nil {
		return nil, err
	}
	tracer().Debugf("loaded scanner tables: %d states, %d columns, %d cmap intervals",
		ts.NumStates, ts.NumCols, len(t.cmap.runs))
	return t, nil
}

// MustLoad is like Load, but panics on inconsistent tables. It is intended for
// tables compiled into a program.
func MustLoad(ts *tables.TableSet) *Tables {
	t, err := Load(ts)
	if err != nil {
		panic(fmt.Sprintf("scanner tables: %v", err))
	}
	return t
}

// check verifies that every table index is in range, such that the scan loop
// cannot fail.
func (t *Tables) check(numStates int) error {
	for s, off := range t.rowmap {
		if off < 0 || int(off)+t.numCols > len(t.trans) {
			return fmt.Errorf("scanner tables: row offset %d of state %d out of range", off, s)
		}
	}
	for i, target := range t.trans {
		if target < NoTarget || int(target) >= numStates {
			return fmt.Errorf("scanner tables: transition #%d targets %d", i, target)
		}
	}
	for _, l := range t.action {
		if l < 0 || int(l) > len(t.actions) {
			return fmt.Errorf("scanner tables: action label %d out of range", l)
		}
	}
	for _, e := range t.lexstate {
		if e < 0 || int(e) >= numStates {
			return fmt.Errorf("scanner tables: entry state %d out of range", e)
		}
	}
	for _, a := range t.actions {
		if a.Entry < 0 || a.Entry+1 >= len(t.lexstate) {
			return fmt.Errorf("scanner tables: lookahead entry %d out of range", a.Entry)
		}
	}
	if len(t.eof) != len(t.lexStates) {
		return fmt.Errorf("scanner tables: %d end-of-file labels for %d lexical states",
			len(t.eof), len(t.lexStates))
	}
	for _, l := range append([]int{t.defaultEOF}, t.eof...) {
		if l < 0 || l > len(t.actions) {
			return fmt.Errorf("scanner tables: end-of-file label %d out of range", l)
		}
	}
	return nil
}

// LexStateID returns the numeric id of a lexical state.
func (t *Tables) LexStateID(name string) (int, bool) {
	for k, n := range t.lexStates {
		if n == name {
			return 2 * k, true
		}
	}
	return 0, false
}

// LexStateName returns the name of a lexical state id.
func (t *Tables) LexStateName(id int) string {
	if id < 0 || id/2 >= len(t.lexStates) {
		return fmt.Sprintf("<state %d>", id)
	}
	return t.lexStates[id/2]
}

// Action returns the dispatch entry of an action label.
func (t *Tables) Action(label int) (tables.ActionEntry, bool) {
	if label < 1 || label > len(t.actions) {
		return tables.ActionEntry{}, false
	}
	return t.actions[label-1], true
}

// Actions returns the action dispatch table. Label i is at index i-1.
func (t *Tables) Actions() []tables.ActionEntry {
	return t.actions
}

// Column returns the column for codepoint r, or -1 if r is outside the
// scanner's alphabet.
func (t *Tables) Column(r rune) int {
	return int(t.cmap.column(r))
}

// next returns the successor of state for codepoint r.
func (t *Tables) next(state int, r rune) int {
	col := t.cmap.column(r)
	if col < 0 {
		return NoTarget
	}
	return int(t.trans[int(t.rowmap[state])+int(col)])
}

func (t *Tables) isFinal(state int) bool {
	return t.attr[state]&tables.AttrFinal != 0
}

func (t *Tables) isDeadEnd(state int) bool {
	return t.attr[state]&tables.AttrNoLook != 0
}

func unpack32(p *pack.Packed) ([]int32, error) {
	x, err := p.Unpack()
	if err != nil {
		return nil, err
	}
	y := make([]int32, len(x))
	for i, v := range x {
		y[i] = int32(v)
	}
	return y, nil
}

// --- Character map ---------------------------------------------------------

type cmapRun struct {
	start, end rune
	col        int32
}

// cmap maps codepoints to columns. ASCII codepoints are looked up directly,
// all others by binary search over runs.
type cmap struct {
	ascii [128]int32
	runs  []cmapRun
}

// decodeCMap decodes (count, column) pairs over the codepoint numbering, in
// which the surrogate range is skipped.
func decodeCMap(p *pack.Packed, numCols int) (cmap, error) {
	var cm cmap
	if p.Scheme != pack.CountScheme || len(p.Data)%2 != 0 {
		return cm, fmt.Errorf("scanner tables: CMap is not count-encoded")
	}
	for i := range cm.ascii {
		cm.ascii[i] = -1
	}
	pos := rune(0)
	for i := 0; i < len(p.Data); i += 2 {
		count, col := rune(p.Data[i]), int32(int(p.Data[i+1])-p.Translation)
		if count == 0 || col < 0 || int(col) >= numCols {
			return cm, fmt.Errorf("scanner tables: bad CMap run at unit %d", i)
		}
		run := cmapRun{start: pos, end: pos + count - 1, col: col}
		if run.start <= charclass.SurrogateHi && run.end >= charclass.SurrogateLo {
			return cm, fmt.Errorf("scanner tables: CMap run covers surrogates")
		}
		if n := len(cm.runs); n > 0 && cm.runs[n-1].col == col && cm.runs[n-1].end+1 == run.start {
			cm.runs[n-1].end = run.end
		} else {
			cm.runs = append(cm.runs, run)
		}
		pos = run.end + 1
		if pos == charclass.SurrogateLo {
			pos = charclass.SurrogateHi + 1
		}
	}
	for r := rune(0); r < 128; r++ {
		cm.ascii[r] = cm.search(r)
	}
	return cm, nil
}

func (cm *cmap) search(r rune) int32 {
	i := sort.Search(len(cm.runs), func(i int) bool {
		return cm.runs[i].end >= r
	})
	if i == len(cm.runs) || cm.runs[i].start > r {
		return -1
	}
	return cm.runs[i].col
}

func (cm *cmap) column(r rune) int32 {
	if r >= 0 && r < 128 {
		return cm.ascii[r]
	}
	return cm.search(r)
}
