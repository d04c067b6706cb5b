package automaton

import (
	"fmt"
)

// LookaheadKind tells the matching engine how to find the end of a match for
// rules with trailing context.
type LookaheadKind uint8

// Kinds of lookahead. They are mutually exclusive per action.
const (
	LookNone         LookaheadKind = iota // no trailing context
	LookFixedBase                         // base has fixed length: end = start + LookLength
	LookFixedLook                         // trailing context has fixed length: end = end - LookLength
	LookFiniteChoice                      // one fixed-length alternative: end = end - LookLength
	LookGeneral                           // two-pass search with the automata at Entry
)

func (k LookaheadKind) String() string {
	switch k {
	case LookNone:
		return "NONE"
	case LookFixedBase:
		return "FIXED_BASE"
	case LookFixedLook:
		return "FIXED_LOOK"
	case LookFiniteChoice:
		return "FINITE_CHOICE"
	case LookGeneral:
		return "GENERAL"
	}
	return fmt.Sprintf("LOOKAHEAD(%d)", k)
}

// Action is the action of a final state.
type Action struct {
	Payload    string        // opaque user code
	Priority   int           // declaration order of the rule; lower wins
	Kind       LookaheadKind // how to find the end of a match
	LookLength int           // codepoints, for fixed-length kinds
	Entry      int           // entry-state index of the forward automaton, for LookGeneral
	seq        int           // creation order, breaks ties between alternatives of one rule
}

// ActionKey is the value identity of an action. Actions with equal keys
// execute identically and share a label in generated tables.
type ActionKey struct {
	Payload    string
	Kind       LookaheadKind
	LookLength int
	Entry      int
}

// Key returns the value identity of a.
func (a *Action) Key() ActionKey {
	return ActionKey{Payload: a.Payload, Kind: a.Kind, LookLength: a.LookLength, Entry: a.Entry}
}

// Precedes is a predicate: does a take precedence over b if both are possible
// in the same state?
func (a *Action) Precedes(b *Action) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}

func (a *Action) String() string {
	if a == nil {
		return "<no action>"
	}
	switch a.Kind {
	case LookNone:
		return fmt.Sprintf("action(#%d %q)", a.Priority, a.Payload)
	case LookGeneral:
		return fmt.Sprintf("action(#%d %q, %s @%d)", a.Priority, a.Payload, a.Kind, a.Entry)
	}
	return fmt.Sprintf("action(#%d %q, %s %d)", a.Priority, a.Payload, a.Kind, a.LookLength)
}

// Rule is a scanner rule.
type Rule struct {
	Pattern  *Pattern // the text matched
	Trailing *Pattern // trailing context, which must follow but is not part of the match; optional
	BOL      bool     // match only at the beginning of a line
	States   []string // lexical states the rule is active in; empty means all inclusive states
	Payload  string   // user action
}

// --- Lexical states --------------------------------------------------------

// Initial is the name of the initial lexical state, which always exists.
const Initial = "YYINITIAL"

// StateTable is the ordered table of lexical states of a scanner, together
// with their end-of-file actions. Inclusive states activate rules without a
// state list, exclusive states don't.
type StateTable struct {
	names      []string
	exclusive  []bool
	index      map[string]int
	eof        map[int]string
	defaultEOF *string
}

// NewStateTable creates a state table containing the initial state.
func NewStateTable() *StateTable {
	st := &StateTable{
		index: make(map[string]int),
		eof:   make(map[int]string),
	}
	st.Declare(Initial, false)
	return st
}

// Declare adds a lexical state. Declaring a state twice is an error.
func (st *StateTable) Declare(name string, exclusive bool) error {
	if _, ok := st.index[name]; ok {
		return &ConfigError{Kind: DuplicateState, Message: "duplicate lexical state " + name}
	}
	st.index[name] = len(st.names)
	st.names = append(st.names, name)
	st.exclusive = append(st.exclusive, exclusive)
	return nil
}

// Len returns the number of lexical states.
func (st *StateTable) Len() int {
	return len(st.names)
}

// Names returns the state names in declaration order.
func (st *StateTable) Names() []string {
	return st.names
}

// Index returns the declaration index k of a state.
func (st *StateTable) Index(name string) (int, bool) {
	k, ok := st.index[name]
	return k, ok
}

// ID returns the numeric id 2k of a state, which is the index of its non-BOL
// entry state. The BOL entry is at 2k+1.
func (st *StateTable) ID(name string) (int, bool) {
	k, ok := st.index[name]
	return 2 * k, ok
}

// IsExclusive is a predicate for the k-th state.
func (st *StateTable) IsExclusive(k int) bool {
	return st.exclusive[k]
}

// SetEOF sets the end-of-file action of a state. The empty name sets the
// default end-of-file action, used for states without their own.
func (st *StateTable) SetEOF(name string, payload string) error {
	if name == "" {
		st.defaultEOF = &payload
		return nil
	}
	k, ok := st.index[name]
	if !ok {
		return &ConfigError{Kind: UnknownState, Message: "end-of-file action for unknown state " + name}
	}
	if _, dup := st.eof[k]; dup {
		return &ConfigError{Kind: DuplicateState, Message: "second end-of-file action for state " + name}
	}
	st.eof[k] = payload
	return nil
}

// resolve maps the state list of a rule to declaration indices.
func (st *StateTable) resolve(names []string) ([]int, error) {
	var ks []int
	if len(names) == 0 {
		for k := range st.names {
			if !st.exclusive[k] {
				ks = append(ks, k)
			}
		}
		return ks, nil
	}
	for _, name := range names {
		k, ok := st.index[name]
		if !ok {
			return nil, &ConfigError{Kind: UnknownState, Message: "unknown lexical state " + name}
		}
		ks = append(ks, k)
	}
	return ks, nil
}
