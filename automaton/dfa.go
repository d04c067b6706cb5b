package automaton

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
)

// NoTarget is the transition target for "no transition".
const NoTarget = -1

// dfaBuilder converts an NFA into a DFA by subset construction. DFA states are
// identified by a hash of their sorted NFA state set.
type dfaBuilder struct {
	nfa     *nfa
	ids     map[string]int
	sets    [][]int
	pending *arraylist.List
	seen    []bool
}

func newDFABuilder(n *nfa) *dfaBuilder {
	return &dfaBuilder{
		nfa:     n,
		ids:     make(map[string]int),
		pending: arraylist.New(),
		seen:    make([]bool, len(n.states)),
	}
}

// state returns the DFA state for an NFA state set, creating it if necessary.
func (db *dfaBuilder) state(set []int) int {
	key, err := structhash.Hash(set, 1)
	if err != nil {
		panic(fmt.Sprintf("cannot hash NFA state set: %v", err))
	}
	if id, ok := db.ids[key]; ok {
		return id
	}
	id := len(db.sets)
	db.ids[key] = id
	db.sets = append(db.sets, set)
	db.pending.Add(id)
	return id
}

// entry returns the DFA state for the ε-closure of an NFA start state.
func (db *dfaBuilder) entry(nfaStart int) int {
	return db.state(db.nfa.closure([]int{nfaStart}, db.seen))
}

// run processes pending DFA states until none are left and returns the
// transition table.
func (db *dfaBuilder) run(numClasses int) [][]int32 {
	var table [][]int32
	targets := make([][]int, numClasses)
	for !db.pending.Empty() {
		v, _ := db.pending.Get(0)
		db.pending.Remove(0)
		id := v.(int)
		for c := range targets {
			targets[c] = targets[c][:0]
		}
		for _, s := range db.sets[id] {
			ns := &db.nfa.states[s]
			for _, c := range ns.classes {
				targets[c] = append(targets[c], ns.target)
			}
		}
		row := make([]int32, numClasses)
		for c := range row {
			row[c] = NoTarget
			if len(targets[c]) > 0 {
				row[c] = int32(db.state(db.nfa.closure(targets[c], db.seen)))
			}
		}
		for len(table) <= id {
			table = append(table, nil)
		}
		table[id] = row
	}
	return table
}

// finals computes finality and the action of every DFA state. If several rules
// end in a state, the one declared first wins.
func (db *dfaBuilder) finals() ([]bool, []*Action) {
	final := make([]bool, len(db.sets))
	actions := make([]*Action, len(db.sets))
	for id, set := range db.sets {
		for _, s := range set {
			ns := &db.nfa.states[s]
			if !ns.final {
				continue
			}
			final[id] = true
			if ns.action == nil {
				continue
			}
			if actions[id] == nil || ns.action.Precedes(actions[id]) {
				actions[id] = ns.action
			}
		}
	}
	return final, actions
}
