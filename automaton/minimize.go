package automaton

import (
	"strconv"
)

// minimize merges equivalent DFA states by iterated partition refinement
// (Moore). States are equivalent if they agree in finality and action, and
// their successors are equivalent for every class. Entry states are mapped to
// their blocks; state numbering follows the first member of each block.
func minimize(a *Automaton) *Automaton {
	n := a.NumStates()
	block := make([]int, n)
	type initKey struct {
		final  bool
		action bool
		key    ActionKey
	}
	initial := make(map[initKey]int)
	for s := 0; s < n; s++ {
		k := initKey{final: a.Final[s]}
		if a.Actions[s] != nil {
			k.action, k.key = true, a.Actions[s].Key()
		}
		b, ok := initial[k]
		if !ok {
			b = len(initial)
			initial[k] = b
		}
		block[s] = b
	}
	count := len(initial)
	buf := make([]byte, 0, 64)
	for {
		sigs := make(map[string]int, count)
		next := make([]int, n)
		for s := 0; s < n; s++ {
			buf = strconv.AppendInt(buf[:0], int64(block[s]), 36)
			for _, t := range a.Table[s] {
				buf = append(buf, ',')
				if t == NoTarget {
					buf = append(buf, '-')
				} else {
					buf = strconv.AppendInt(buf, int64(block[t]), 36)
				}
			}
			b, ok := sigs[string(buf)]
			if !ok {
				b = len(sigs)
				sigs[string(buf)] = b
			}
			next[s] = b
		}
		block = next
		if len(sigs) == count {
			break
		}
		count = len(sigs)
	}
	// renumber blocks by first member
	renum := make([]int, count)
	for i := range renum {
		renum[i] = -1
	}
	var reps []int
	for s := 0; s < n; s++ {
		if renum[block[s]] < 0 {
			renum[block[s]] = len(reps)
			reps = append(reps, s)
		}
	}
	m := &Automaton{
		Table:       make([][]int32, len(reps)),
		Final:       make([]bool, len(reps)),
		Actions:     make([]*Action, len(reps)),
		EntryStates: make([]int, len(a.EntryStates)),
		LexStates:   a.LexStates,
		Partition:   a.Partition,
	}
	for i, s := range reps {
		row := make([]int32, len(a.Table[s]))
		for c, t := range a.Table[s] {
			row[c] = NoTarget
			if t != NoTarget {
				row[c] = int32(renum[block[t]])
			}
		}
		m.Table[i] = row
		m.Final[i] = a.Final[s]
		m.Actions[i] = a.Actions[s]
	}
	for i, e := range a.EntryStates {
		m.EntryStates[i] = renum[block[e]]
	}
	return m
}
