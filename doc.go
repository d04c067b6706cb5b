/*
Package lexgen is a generator for table-driven lexical scanners.

Lexgen takes rules (regular expressions over character classes, each tagged
with an action and a set of lexical states), builds a deterministic finite
automaton recognizing the longest matching rule at every input position,
compresses the automaton into compact tables and drives scanners from these
tables. Package structure is as follows:

■ charclass: Package charclass partitions the codepoint alphabet into classes
of codepoints which no rule distinguishes.

■ automaton: Package automaton implements rules, lexical states and the
construction of the DFA shared by all lexical states.

■ tables: Package tables reduces the DFA's transition table and assembles the
compressed table set handed to scanners and code emitters.

■ pack: Package pack implements the run-length and hi/low encodings for integer
tables.

■ scanner: Package scanner executes compressed tables with longest-match,
lookahead and line/column tracking semantics.

■ emit: Package emit writes Go source code for a table set.

■ config: Package config holds generator and scanner options, loadable from
YAML files.

■ cmd/zzrepl: An interactive tool to experiment with scanner tables.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexgen
