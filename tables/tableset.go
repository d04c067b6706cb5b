package tables

import (
	"fmt"

	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/pack"
)

// Attribute bits of a state.
const (
	AttrFinal  = 1 // state is final
	AttrNoLook = 8 // state has no outgoing transition
)

// ActionEntry is an entry of the action dispatch table.
type ActionEntry struct {
	Label      int // ≥ 1
	Payload    string
	Kind       automaton.LookaheadKind
	LookLength int
	Entry      int
}

func (ae ActionEntry) String() string {
	return fmt.Sprintf("%d: %q (%s, %d, @%d)", ae.Label, ae.Payload, ae.Kind, ae.LookLength, ae.Entry)
}

// TableSet is the compressed table set of a scanner. Clients must treat a
// TableSet as immutable.
type TableSet struct {
	UnicodeVersion string
	MaxCodepoint   rune
	NumStates      int
	NumCols        int
	LexStates      []string // lexical state names; state k has id 2k
	CMap           *pack.Packed
	Action         *pack.Packed
	RowMap         *pack.Packed
	Trans          *pack.Packed
	Attribute      *pack.Packed
	LexState       *pack.Packed
	Actions        []ActionEntry // label i is at index i-1
	EOF            []int         // per lexical state: label of end-of-file action, 0 if none
	DefaultEOF     int           // label of default end-of-file action, 0 if none
}

// NumLexStates returns the number of lexical states.
func (ts *TableSet) NumLexStates() int {
	return len(ts.LexStates)
}

// LexStateID returns the numeric id 2k of a lexical state.
func (ts *TableSet) LexStateID(name string) (int, bool) {
	for k, n := range ts.LexStates {
		if n == name {
			return 2 * k, true
		}
	}
	return 0, false
}

// ActionFor returns the dispatch entry of an action label.
func (ts *TableSet) ActionFor(label int) (ActionEntry, bool) {
	if label < 1 || label > len(ts.Actions) {
		return ActionEntry{}, false
	}
	return ts.Actions[label-1], true
}

func (ts *TableSet) String() string {
	return fmt.Sprintf("table set(%d states, %d columns, %d lexical states, %d actions, %d units)",
		ts.NumStates, ts.NumCols, len(ts.LexStates), len(ts.Actions), ts.Units())
}

// Units returns the number of 16-bit units of all packed tables.
func (ts *TableSet) Units() int {
	n := 0
	for _, p := range ts.packed() {
		if p != nil {
			n += len(p.Data)
		}
	}
	return n
}

func (ts *TableSet) packed() []*pack.Packed {
	return []*pack.Packed{ts.CMap, ts.Action, ts.RowMap, ts.Trans, ts.Attribute, ts.LexState}
}

// Validate checks the consistency of a table set, e.g. after reading it from
// an external source.
func (ts *TableSet) Validate() error {
	for i, p := range ts.packed() {
		if p == nil {
			return fmt.Errorf("table set: packed table #%d missing", i)
		}
	}
	if ts.Action.Length != ts.NumStates || ts.RowMap.Length != ts.NumStates ||
		ts.Attribute.Length != ts.NumStates {
		return fmt.Errorf("table set: per-state tables do not match %d states", ts.NumStates)
	}
	if ts.NumCols < 1 || ts.Trans.Length%ts.NumCols != 0 {
		return fmt.Errorf("table set: transition table does not match %d columns", ts.NumCols)
	}
	if ts.LexState.Length < 2*len(ts.LexStates) || ts.LexState.Length%2 != 0 {
		return fmt.Errorf("table set: %d entry states for %d lexical states", ts.LexState.Length,
			len(ts.LexStates))
	}
	if len(ts.EOF) != len(ts.LexStates) {
		return fmt.Errorf("table set: %d end-of-file actions for %d lexical states", len(ts.EOF),
			len(ts.LexStates))
	}
	for i, a := range ts.Actions {
		if a.Label != i+1 {
			return fmt.Errorf("table set: action #%d has label %d", i, a.Label)
		}
	}
	for k, label := range ts.EOF {
		if label < 0 || label > len(ts.Actions) {
			return fmt.Errorf("table set: end-of-file label %d of lexical state %d out of range", label, k)
		}
	}
	if ts.DefaultEOF < 0 || ts.DefaultEOF > len(ts.Actions) {
		return fmt.Errorf("table set: default end-of-file label %d out of range", ts.DefaultEOF)
	}
	return nil
}
