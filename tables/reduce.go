package tables

import (
	"golang.org/x/exp/slices"
)

// Reduced is a transition table with duplicate rows and columns folded.
// For every state s and class c:
//
//     original[s][c] == Table[RowMap[s]][ColMap[c]]
//
// Entries of Table are still (original) state ids.
type Reduced struct {
	Table     [][]int32 // [row][column]
	RowMap    []int     // state → row, onto 0…NumRows-1
	ColMap    []int     // class → column, onto 0…NumCols-1
	NumRows   int
	NumCols   int
	RowKilled int // number of rows folded
	ColKilled int // number of columns folded
}

// Reduce folds duplicate columns, then duplicate rows of a dense transition
// table. A column (row) is folded into the first earlier column (row) it is
// identical to. Rows are compared in their column-reduced form.
func Reduce(table [][]int32, numStates, numClasses int) *Reduced {
	red := &Reduced{
		RowMap: make([]int, numStates),
		ColMap: make([]int, numClasses),
	}
	column := func(c int) []int32 {
		col := make([]int32, numStates)
		for s := 0; s < numStates; s++ {
			col[s] = table[s][c]
		}
		return col
	}
	var keptCols [][]int32 // columns in emitted order
	var keptClass []int    // representative class per column
	for c := 0; c < numClasses; c++ {
		col := column(c)
		red.ColMap[c] = -1
		for i, k := range keptCols {
			if slices.Equal(k, col) {
				red.ColMap[c] = i
				red.ColKilled++
				break
			}
		}
		if red.ColMap[c] < 0 {
			red.ColMap[c] = len(keptCols)
			keptCols = append(keptCols, col)
			keptClass = append(keptClass, c)
		}
	}
	red.NumCols = len(keptCols)
	for s := 0; s < numStates; s++ {
		row := make([]int32, red.NumCols)
		for i, c := range keptClass {
			row[i] = table[s][c]
		}
		red.RowMap[s] = -1
		for r, k := range red.Table {
			if slices.Equal(k, row) {
				red.RowMap[s] = r
				red.RowKilled++
				break
			}
		}
		if red.RowMap[s] < 0 {
			red.RowMap[s] = len(red.Table)
			red.Table = append(red.Table, row)
		}
	}
	red.NumRows = len(red.Table)
	tracer().Infof("reduced transition table %d×%d to %d×%d", numStates, numClasses,
		red.NumRows, red.NumCols)
	return red
}

// Lookup returns the transition for state s and class c.
func (red *Reduced) Lookup(s, c int) int32 {
	return red.Table[red.RowMap[s]][red.ColMap[c]]
}
