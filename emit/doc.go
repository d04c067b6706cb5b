/*
Package emit writes Go source code for a scanner table set.

The generated file holds the packed tables as a composite literal, constants
for lexical states and action labels, and a constructor for scanners which
unpacks the tables on first use:

    var buf bytes.Buffer
    err := emit.GoSource(ts, emit.Params{Package: "calc", Prefix: "Calc"}, &buf)

The generated code depends on packages tables, pack and scanner of this module.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package emit

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.emit'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.emit")
}
