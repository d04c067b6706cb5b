/*
Package tables compresses the automaton of a scanner into a table set.

Generating tables is a two-step process. First, the dense transition table of
the automaton is reduced by folding duplicate columns (character classes) and
then duplicate rows (states). Reduction is a single pass which only removes
exact duplicates of an earlier row or column; it is not a minimization.
Second, the reduced table and its companions are encoded with package pack:

    CMap       codepoint runs → column (count scheme, surrogates skipped)
    Action     state → action label (count scheme)
    RowMap     state → row offset into Trans (hi/low scheme)
    Trans      reduced transition table, row-major (count scheme, translation +1)
    Attribute  state → FINAL | NOLOOK bits (count scheme)
    LexState   entry index → state (count scheme)

Action labels start at 1, in order of first appearance; label 0 means "no
action". Actions with equal payload and lookahead share a label.

A TableSet is immutable. It has a binary representation (XDR, lz4-compressed)
and may be dumped as HTML for debugging.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tables

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.tables'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.tables")
}
