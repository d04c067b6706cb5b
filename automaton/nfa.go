package automaton

import (
	"github.com/npillmayer/lexgen/charclass"
	"golang.org/x/exp/slices"
)

// nfaState is a state of a Thompson NFA over character classes. A state has
// either class transitions to a single target, or ε-transitions.
type nfaState struct {
	classes []int // classes leading to target
	target  int
	eps     []int
	final   bool
	action  *Action // nil for internal finals of lookahead automata
}

type nfa struct {
	states    []nfaState
	partition *charclass.Partition
	dot       *charclass.IntervalSet
}

func newNFA(partition *charclass.Partition, dot *charclass.IntervalSet) *nfa {
	return &nfa{partition: partition, dot: dot}
}

func (n *nfa) add() int {
	n.states = append(n.states, nfaState{target: -1})
	return len(n.states) - 1
}

func (n *nfa) epsilon(from, to int) {
	n.states[from].eps = append(n.states[from].eps, to)
}

// fragment builds a fresh sub-automaton for p and returns its start and end
// state.
func (n *nfa) fragment(p *Pattern) (start, end int) {
	start, end = n.add(), n.add()
	switch p.op {
	case OpChars, OpDot:
		set := p.set
		if p.op == OpDot {
			set = n.dot
		}
		n.states[start].classes = n.partition.ClassesOf(set)
		n.states[start].target = end
	case OpEmpty:
		n.epsilon(start, end)
	case OpCat:
		prev := start
		for _, c := range p.children {
			s, e := n.fragment(c)
			n.epsilon(prev, s)
			prev = e
		}
		n.epsilon(prev, end)
	case OpOr:
		for _, c := range p.children {
			s, e := n.fragment(c)
			n.epsilon(start, s)
			n.epsilon(e, end)
		}
	case OpStar, OpPlus, OpOpt:
		s, e := n.fragment(p.children[0])
		n.epsilon(start, s)
		n.epsilon(e, end)
		if p.op != OpPlus {
			n.epsilon(start, end)
		}
		if p.op != OpOpt {
			n.epsilon(e, s)
		}
	case OpRepeat:
		prev := start
		sub := p.children[0]
		for i := 0; i < p.min; i++ {
			s, e := n.fragment(sub)
			n.epsilon(prev, s)
			prev = e
		}
		if p.max < 0 {
			s, e := n.fragment(Star(sub))
			n.epsilon(prev, s)
			prev = e
		} else {
			for i := p.min; i < p.max; i++ { // nested optionals
				s, e := n.fragment(sub)
				n.epsilon(prev, s)
				n.epsilon(prev, end)
				prev = e
			}
		}
		n.epsilon(prev, end)
	}
	return
}

// accept builds p followed by a final state carrying action.
func (n *nfa) accept(p *Pattern, action *Action) int {
	s, e := n.fragment(p)
	n.states[e].final = true
	n.states[e].action = action
	return s
}

// closure returns the sorted ε-closure of a set of states.
func (n *nfa) closure(set []int, seen []bool) []int {
	for i := range seen {
		seen[i] = false
	}
	stack := append([]int(nil), set...)
	var result []int
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
		stack = append(stack, n.states[s].eps...)
	}
	slices.Sort(result)
	return result
}
