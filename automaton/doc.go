/*
Package automaton builds the deterministic automaton of a scanner.

A scanner is specified by an ordered list of rules. Every rule has a pattern,
an optional trailing context, the lexical states it is active in and an action
payload. Rules declared earlier take precedence over rules declared later, if
both match input of the same length.

Patterns are trees of fragments over sets of codepoints:

    ident := automaton.Cat(
        automaton.Chars(letters),
        automaton.Star(automaton.Or(automaton.Chars(letters), automaton.Chars(digits))))

Package automaton partitions the alphabet into character classes (see package
charclass), constructs a Thompson NFA over character classes and converts it
to a DFA by subset construction. All lexical states share a single transition
table. Every lexical state k has two entry states, one for input positions at
the beginning of a line (BOL) and one for all other positions. Their indices
into the entry-state table are 2k and 2k+1. Rules with a trailing context of
unknown length get an additional pair of entry states each, appended after
the lexical states: a forward automaton for the base pattern and a backward
automaton for the reversed trailing context.

Ambiguity between rules is resolved by declaration order and never reported
as an error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package automaton

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.automaton'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.automaton")
}
