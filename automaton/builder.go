package automaton

// Builder collects lexical states and rules and builds an automaton. It
// offers a fluent interface:
//
//     b := automaton.NewBuilder(automaton.DefaultOptions())
//     b.ExclusiveState("STRING")
//     b.Rule(automaton.Lit(`"`), "enterString")
//     b.Rule(automaton.Plus(automaton.Chars(strChars)), "text").In("STRING")
//     b.Rule(automaton.Lit("#"), "directive").AtBOL()
//     b.EOF("eof")
//     a, err := b.Build()
//
// Errors are collected and reported by Build.
type Builder struct {
	opts   Options
	states *StateTable
	rules  []Rule
	err    error
}

// NewBuilder creates a builder with a state table holding the initial state.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, states: NewStateTable()}
}

// State declares an inclusive lexical state.
func (b *Builder) State(names ...string) *Builder {
	for _, name := range names {
		b.keep(b.states.Declare(name, false))
	}
	return b
}

// ExclusiveState declares an exclusive lexical state.
func (b *Builder) ExclusiveState(names ...string) *Builder {
	for _, name := range names {
		b.keep(b.states.Declare(name, true))
	}
	return b
}

// EOF sets the end-of-file action for lexical states. Without states, the
// default end-of-file action is set.
func (b *Builder) EOF(payload string, states ...string) *Builder {
	if len(states) == 0 {
		b.keep(b.states.SetEOF("", payload))
	}
	for _, name := range states {
		b.keep(b.states.SetEOF(name, payload))
	}
	return b
}

// Rule appends a rule with lower precedence than all rules appended before.
func (b *Builder) Rule(p *Pattern, payload string) *RuleDecl {
	b.rules = append(b.rules, Rule{Pattern: p, Payload: payload})
	return &RuleDecl{b: b, index: len(b.rules) - 1}
}

// States returns the state table of the builder.
func (b *Builder) States() *StateTable {
	return b.states
}

// Build builds the automaton, or reports the first error encountered while
// declaring states and rules.
func (b *Builder) Build() (*Automaton, error) {
	if b.err != nil {
		return nil, b.err
	}
	return Build(b.rules, b.states, b.opts)
}

func (b *Builder) keep(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// RuleDecl refines the declaration of a rule.
type RuleDecl struct {
	b     *Builder
	index int
}

// In restricts the rule to lexical states.
func (d *RuleDecl) In(states ...string) *RuleDecl {
	d.b.rules[d.index].States = append(d.b.rules[d.index].States, states...)
	return d
}

// AtBOL restricts the rule to the beginning of a line.
func (d *RuleDecl) AtBOL() *RuleDecl {
	d.b.rules[d.index].BOL = true
	return d
}

// FollowedBy sets the trailing context of the rule.
func (d *RuleDecl) FollowedBy(trailing *Pattern) *RuleDecl {
	d.b.rules[d.index].Trailing = trailing
	return d
}
