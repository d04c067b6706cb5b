/*
Package scanner executes compressed scanner tables.

Tables created by package tables are loaded once and may then be shared by any
number of scanners, running concurrently:

    t, err := scanner.Load(tableSet)
    ...
    s := scanner.New(t, input)
    for {
        m, err := s.Next()
        if err == io.EOF {
            break
        }
        ...  // dispatch on m.Label or m.Payload
    }

Every call to Next returns the longest match at the current input position.
Matches of equal length are resolved in favour of the rule declared first.
For rules with trailing context the match ends where the trailing context
starts. Scanners track byte offsets, lines and columns (in codepoints), and
whether the current position is at the beginning of a line.

Lexer adapts a Scanner to the Tokenizer interface, mapping action payloads to
functions producing tokens.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.scanner")
}
