/*
Package charclass partitions the codepoint alphabet into character classes.

Scanner tables are indexed by character class instead of by codepoint. Two
codepoints belong to the same class if and only if no rule of a scanner
distinguishes them. Clients register every set of codepoints a
rule refers to with a Partitioner and receive a Partition:

    p, _ := charclass.NewPartitioner(0x10FFFF, unicode.Version)
    p.Refine(charclass.NewIntervalSet(charclass.Interval{'a', 'z'}))
    p.Refine(charclass.NewIntervalSet(charclass.Interval{'0', '9'}))
    partition := p.Partition()
    c := partition.ClassOf('x')   // same class as 'a'

The UTF-16 surrogate range U+D800…U+DFFF is a hole in the codepoint numbering:
it never belongs to an interval set, a class or an emitted block.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package charclass

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.charclass'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.charclass")
}
