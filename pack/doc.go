/*
Package pack encodes integer tables into compact sequences of 16-bit units.

Two schemes are supported. The count scheme stores (count, value) pairs for
maximal runs of identical values. An optional translation is added to every
value before storage, which makes small negative sentinels storable. The
hi/low scheme stores every value as a pair of 16-bit units and is used for
tables holding values which may exceed 16 bits.

Both schemes are exactly invertible: for every table x,

    p, _ := pack.Encode(x)
    y, _ := p.Unpack()   // y equals x

Unrepresentable values are reported when encoding, never when decoding.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pack

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.pack'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.pack")
}
