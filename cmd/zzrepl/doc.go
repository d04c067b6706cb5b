/*
Command zzrepl is an interactive command line tool (ZZ.REPL) for scanners
generated by lexgen. It builds a demo scanner, or loads a saved table set, and
scans every line entered, printing the resulting tokens. It may also export
table sets as binary files, HTML or Go source.

    zzrepl --trace=Debug --html=tables.html
    zzrepl --save=demo.lxt --gosrc=demo.go --package=demo
    zzrepl --tables=demo.lxt 'if x > 42 then'

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

var cliTracer tracing.Trace = gologadapter.New()

// tracer traces to the Go log package.
func tracer() tracing.Trace {
	return cliTracer
}

// tracingKeys are the keys of the lexgen packages.
var tracingKeys = []string{
	"lexgen.charclass",
	"lexgen.automaton",
	"lexgen.tables",
	"lexgen.pack",
	"lexgen.scanner",
	"lexgen.emit",
	"lexgen.config",
}

func setTraceLevel(l string) {
	level := tracing.TraceLevelFromString(l)
	tracer().SetTraceLevel(level)
	for _, key := range tracingKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}
