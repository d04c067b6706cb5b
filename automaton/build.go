package automaton

import (
	"errors"
	"sort"
	"unicode"

	"github.com/npillmayer/lexgen/charclass"
)

// Options control automaton construction.
type Options struct {
	LegacyDot      bool   // '.' matches everything but '\n'
	Minimize       bool   // merge equivalent DFA states
	MaxCodepoint   rune   // largest codepoint of the alphabet
	UnicodeVersion string // recorded in the character class partition
}

// DefaultOptions returns options for the full Unicode range.
func DefaultOptions() Options {
	return Options{
		Minimize:       true,
		MaxCodepoint:   charclass.MaxCodepoint,
		UnicodeVersion: unicode.Version,
	}
}

// Automaton is the DFA of a scanner. States are indices into the rows of
// Table; the transition table is shared by all lexical states. An Automaton
// is immutable after Build returns.
type Automaton struct {
	Table         [][]int32 // [state][class] → state or NoTarget
	Final         []bool    // state is final
	Actions       []*Action // action of a state, nil if none
	HasTransition []bool    // state has at least one transition
	EntryStates   []int     // 2k, 2k+1 for lexical states, then lookahead pairs
	LexStates     *StateTable
	Partition     *charclass.Partition
	EOFActions    []*Action // per lexical state index k, nil if none
	DefaultEOF    *Action   // may be nil
}

// NumStates returns the number of DFA states.
func (a *Automaton) NumStates() int {
	return len(a.Table)
}

// NumClasses returns the number of character classes.
func (a *Automaton) NumClasses() int {
	return a.Partition.NumClasses()
}

// NumLexStates returns the number of lexical states.
func (a *Automaton) NumLexStates() int {
	return a.LexStates.Len()
}

// Entry returns the entry state of lexical state k.
func (a *Automaton) Entry(k int, atBOL bool) int {
	if atBOL {
		return a.EntryStates[2*k+1]
	}
	return a.EntryStates[2*k]
}

// Step returns the successor of state s for codepoint r, or NoTarget.
func (a *Automaton) Step(s int, r rune) int {
	c := a.Partition.ClassOf(r)
	if c == charclass.NoClass {
		return NoTarget
	}
	return int(a.Table[s][c])
}

// Run simulates the automaton from lexical state k on input and returns the
// action of the longest match and its length in bytes, without lookahead
// adjustments. If no rule matches, Run returns nil.
func (a *Automaton) Run(k int, atBOL bool, input string) (*Action, int) {
	s := a.Entry(k, atBOL)
	action, length := a.Actions[s], 0
	for i, r := range input {
		if s = a.Step(s, r); s == NoTarget {
			break
		}
		if a.Actions[s] != nil {
			action, length = a.Actions[s], i+len(string(r))
		}
	}
	return action, length
}

// Lookaheads returns the actions with general lookahead, in the order of their
// entry states.
func (a *Automaton) Lookaheads() []*Action {
	var las []*Action
	seen := make(map[*Action]bool)
	for _, act := range a.Actions {
		if act != nil && act.Kind == LookGeneral && !seen[act] {
			seen[act] = true
			las = append(las, act)
		}
	}
	sort.Slice(las, func(i, j int) bool { return las[i].Entry < las[j].Entry })
	return las
}

// --- Build -----------------------------------------------------------------

type lookahead struct {
	base, trailing *Pattern
}

// Build constructs the automaton for a list of rules, given in order of
// precedence. states may be nil, meaning only the initial state exists.
func Build(rules []Rule, states *StateTable, opts Options) (*Automaton, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleSet
	}
	if states == nil {
		states = NewStateTable()
	}
	if opts.UnicodeVersion == "" {
		opts.UnicodeVersion = unicode.Version
	}
	for i, r := range rules {
		if err := r.Pattern.check(); err != nil {
			return nil, wrap(err, "rule #%d", i)
		}
		if r.Trailing != nil {
			if err := r.Trailing.check(); err != nil {
				return nil, wrap(err, "trailing context of rule #%d", i)
			}
		}
	}
	partition, dot, err := partitionFor(rules, opts)
	if err != nil {
		return nil, err
	}
	n := newNFA(partition, dot)
	L := states.Len()
	starts := make([]int, 2*L) // NFA start per entry
	for i := range starts {
		starts[i] = n.add()
	}
	hasBOL := make([]bool, L)
	var las []lookahead
	seq := 0
	newAction := func(r Rule, i int) *Action {
		seq++
		return &Action{Payload: r.Payload, Priority: i, seq: seq}
	}
	for i, r := range rules {
		ks, err := states.resolve(r.States)
		if err != nil {
			return nil, err
		}
		var ruleStarts []int
		switch kind, look := classify(r); kind {
		case LookNone:
			ruleStarts = append(ruleStarts, n.accept(r.Pattern, newAction(r, i)))
		case LookFixedLook, LookFixedBase:
			act := newAction(r, i)
			act.Kind, act.LookLength = kind, look
			ruleStarts = append(ruleStarts, n.accept(Cat(r.Pattern, r.Trailing), act))
		case LookFiniteChoice:
			for _, alt := range r.Trailing.children {
				act := newAction(r, i)
				act.Kind = kind
				act.LookLength, _ = FixedLength(alt)
				ruleStarts = append(ruleStarts, n.accept(Cat(r.Pattern, alt), act))
			}
		case LookGeneral:
			act := newAction(r, i)
			act.Kind = kind
			act.Entry = 2 * (L + len(las))
			las = append(las, lookahead{base: r.Pattern, trailing: r.Trailing})
			ruleStarts = append(ruleStarts, n.accept(Cat(r.Pattern, r.Trailing), act))
		}
		if l, ok := FixedLength(r.Pattern); ok && l == 0 && r.Trailing == nil {
			tracer().Infof("rule #%d matches the empty string only", i)
		}
		for _, k := range ks {
			hasBOL[k] = hasBOL[k] || r.BOL
			for _, rs := range ruleStarts {
				if !r.BOL {
					n.epsilon(starts[2*k], rs)
				}
				n.epsilon(starts[2*k+1], rs)
			}
		}
	}
	for k := range hasBOL { // share entry states if the BOL flag makes no difference
		if !hasBOL[k] {
			starts[2*k+1] = starts[2*k]
		}
	}
	for _, la := range las { // forward base and backward trailing context
		fwd, bwd := n.add(), n.add()
		n.epsilon(fwd, n.accept(la.base, nil))
		n.epsilon(bwd, n.accept(Reverse(la.trailing), nil))
		starts = append(starts, fwd, bwd)
	}
	db := newDFABuilder(n)
	entries := make([]int, len(starts))
	for i, s := range starts {
		entries[i] = db.entry(s)
	}
	table := db.run(partition.NumClasses())
	final, actions := db.finals()
	a := &Automaton{
		Table:       table,
		Final:       final,
		Actions:     actions,
		EntryStates: entries,
		LexStates:   states,
		Partition:   partition,
	}
	if !hasActions(a) {
		return nil, ErrEmptyRuleSet
	}
	tracer().Infof("DFA has %d states over %d classes, %d lexical states, %d lookahead automata",
		a.NumStates(), a.NumClasses(), L, len(las))
	if opts.Minimize {
		a = minimize(a)
		tracer().Infof("minimized DFA has %d states", a.NumStates())
	}
	a.HasTransition = transitions(a.Table)
	a.EOFActions, a.DefaultEOF = eofActions(states, len(rules))
	for _, i := range a.EmptyMatchEntries() {
		tracer().Infof("lexical state %s accepts the empty string, scanners will report zero-length matches",
			a.entryName(i))
	}
	return a, nil
}

// EmptyMatchEntries returns the lexical entries (2k and 2k+1 for lexical
// state k) whose entry state is final. A scanner in such a state matches
// the empty string where no rule applies, without consuming input.
func (a *Automaton) EmptyMatchEntries() []int {
	var entries []int
	for i := 0; i < 2*a.NumLexStates(); i++ {
		if a.Final[a.EntryStates[i]] {
			entries = append(entries, i)
		}
	}
	return entries
}

// classify determines the lookahead kind of a rule and, for fixed-length kinds,
// the lookahead length.
func classify(r Rule) (LookaheadKind, int) {
	if r.Trailing == nil {
		return LookNone, 0
	}
	if l, ok := FixedLength(r.Trailing); ok {
		return LookFixedLook, l
	}
	if l, ok := FixedLength(r.Pattern); ok {
		return LookFixedBase, l
	}
	if r.Trailing.op == OpOr {
		finite := true
		for _, alt := range r.Trailing.children {
			if _, ok := FixedLength(alt); !ok {
				finite = false
				break
			}
		}
		if finite {
			return LookFiniteChoice, 0
		}
	}
	return LookGeneral, 0
}

// partitionFor refines the alphabet with every set referenced by a rule.
func partitionFor(rules []Rule, opts Options) (*charclass.Partition, *charclass.IntervalSet, error) {
	p, err := charclass.NewPartitioner(opts.MaxCodepoint, opts.UnicodeVersion)
	if err != nil {
		return nil, nil, &ConfigError{Kind: UnsupportedRange, Message: "cannot partition alphabet", Cause: err}
	}
	dot := charclass.Dot(opts.LegacyDot, opts.MaxCodepoint)
	var refineErr error
	refine := func(set *charclass.IntervalSet) {
		if refineErr == nil {
			refineErr = p.Refine(set)
		}
	}
	for _, r := range rules {
		r.Pattern.sets(dot, refine)
		if r.Trailing != nil {
			r.Trailing.sets(dot, refine)
		}
	}
	if refineErr != nil {
		return nil, nil, &ConfigError{Kind: UnsupportedRange, Message: "character set out of range", Cause: refineErr}
	}
	return p.Partition(), dot, nil
}

func hasActions(a *Automaton) bool {
	for _, act := range a.Actions {
		if act != nil {
			return true
		}
	}
	return false
}

func transitions(table [][]int32) []bool {
	has := make([]bool, len(table))
	for s, row := range table {
		for _, t := range row {
			if t != NoTarget {
				has[s] = true
				break
			}
		}
	}
	return has
}

// eofActions creates the end-of-file actions. Their priorities follow the
// rules' priorities.
func eofActions(st *StateTable, prio int) ([]*Action, *Action) {
	eofs := make([]*Action, st.Len())
	for k := range eofs {
		if payload, ok := st.eof[k]; ok {
			eofs[k] = &Action{Payload: payload, Priority: prio + k}
		}
	}
	var dflt *Action
	if st.defaultEOF != nil {
		dflt = &Action{Payload: *st.defaultEOF, Priority: prio + st.Len()}
	}
	return eofs, dflt
}

func wrap(err error, format string, args ...interface{}) error {
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		e := configError(cerr.Kind, format, args...)
		e.Cause = err
		return e
	}
	return err
}
