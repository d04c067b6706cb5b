package tables

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/pack"
)

// Generator is a generator object to construct scanner tables from an
// automaton. Clients usually build an automaton A, then create a generator
// for A. Generator.CreateTables() reduces and encodes the tables.
type Generator struct {
	a       *automaton.Automaton
	reduced *Reduced
	labels  *linkedhashmap.Map // ActionKey → *ActionEntry, in order of first appearance
	tables  *TableSet
}

// NewGenerator creates a new Generator for an automaton.
func NewGenerator(a *automaton.Automaton) *Generator {
	return &Generator{a: a, labels: linkedhashmap.New()}
}

// Generate is a shortcut for NewGenerator(a).CreateTables().
func Generate(a *automaton.Automaton) (*TableSet, error) {
	return NewGenerator(a).CreateTables()
}

// Reduced returns the reduced transition table. Clients have to call
// CreateTables() first.
func (gen *Generator) Reduced() *Reduced {
	if gen.reduced == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
	}
	return gen.reduced
}

// Tables returns the table set. Clients have to call CreateTables() first.
func (gen *Generator) Tables() *TableSet {
	if gen.tables == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
	}
	return gen.tables
}

// CreateTables reduces and encodes the tables of the automaton. No partial
// table set is returned in case of an error.
func (gen *Generator) CreateTables() (*TableSet, error) {
	a := gen.a
	if a == nil || a.NumStates() == 0 {
		return nil, automaton.ErrEmptyRuleSet
	}
	gen.reduced = Reduce(a.Table, a.NumStates(), a.NumClasses())
	ts := &TableSet{
		UnicodeVersion: a.Partition.UnicodeVersion(),
		MaxCodepoint:   a.Partition.MaxCodepoint(),
		NumStates:      a.NumStates(),
		NumCols:        gen.reduced.NumCols,
		LexStates:      append([]string(nil), a.LexStates.Names()...),
	}
	var err error
	if ts.CMap, err = gen.cmap(); err != nil {
		return nil, fmt.Errorf("encoding CMap: %w", err)
	}
	if ts.Action, err = pack.EncodeCount(gen.actionLabels(), 0); err != nil {
		return nil, fmt.Errorf("encoding Action: %w", err)
	}
	if ts.RowMap, err = pack.EncodeHiLow(gen.rowMap()); err != nil {
		return nil, fmt.Errorf("encoding RowMap: %w", err)
	}
	if ts.Trans, err = pack.EncodeCount(gen.trans(), 1); err != nil {
		return nil, fmt.Errorf("encoding Trans: %w", err)
	}
	if ts.Attribute, err = pack.EncodeCount(gen.attributes(), 0); err != nil {
		return nil, fmt.Errorf("encoding Attribute: %w", err)
	}
	if ts.LexState, err = pack.EncodeCount(a.EntryStates, 0); err != nil {
		return nil, fmt.Errorf("encoding LexState: %w", err)
	}
	ts.EOF = make([]int, a.NumLexStates())
	for k, act := range a.EOFActions {
		if act != nil {
			ts.EOF[k] = gen.label(act)
		}
	}
	if a.DefaultEOF != nil {
		ts.DefaultEOF = gen.label(a.DefaultEOF)
	}
	for _, v := range gen.labels.Values() {
		ts.Actions = append(ts.Actions, *v.(*ActionEntry))
	}
	gen.tables = ts
	tracer().Infof("created %s", ts)
	return ts, nil
}

// label returns the label of an action, assigning the next free label to
// actions not seen before.
func (gen *Generator) label(act *automaton.Action) int {
	key := act.Key()
	if v, ok := gen.labels.Get(key); ok {
		return v.(*ActionEntry).Label
	}
	entry := &ActionEntry{
		Label:      gen.labels.Size() + 1,
		Payload:    act.Payload,
		Kind:       act.Kind,
		LookLength: act.LookLength,
		Entry:      act.Entry,
	}
	gen.labels.Put(key, entry)
	return entry.Label
}

func (gen *Generator) actionLabels() []int {
	labels := make([]int, gen.a.NumStates())
	for s, act := range gen.a.Actions {
		if act != nil {
			labels[s] = gen.label(act)
		}
	}
	return labels
}

func (gen *Generator) rowMap() []int {
	rm := make([]int, gen.a.NumStates())
	for s, r := range gen.reduced.RowMap {
		rm[s] = r * gen.reduced.NumCols
	}
	return rm
}

func (gen *Generator) trans() []int {
	t := make([]int, 0, gen.reduced.NumRows*gen.reduced.NumCols)
	for _, row := range gen.reduced.Table {
		for _, target := range row {
			t = append(t, int(target))
		}
	}
	return t
}

func (gen *Generator) attributes() []int {
	attrs := make([]int, gen.a.NumStates())
	for s := range attrs {
		if gen.a.Final[s] {
			attrs[s] |= AttrFinal
		}
		if !gen.a.HasTransition[s] {
			attrs[s] |= AttrNoLook
		}
	}
	return attrs
}

// cmap encodes the mapping from codepoints to columns as runs. Runs never
// extend over the surrogate hole, which is not part of the numbering.
func (gen *Generator) cmap() (*pack.Packed, error) {
	enc := pack.NewCountEncoder(0)
	cols := gen.a.Partition.Columns(func(c int) int {
		return gen.reduced.ColMap[c]
	})
	for _, iv := range cols {
		enc.Emit(iv.Len(), iv.Class)
	}
	return enc.Packed()
}
