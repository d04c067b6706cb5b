/*
Package config holds the options of the scanner generator and of scanners.

Options may be loaded from YAML files:

    bufferSize: 4096
    legacyDot: false
    encoding: ISO-8859-1
    normalization: NFC
    minimize: true
    maxCodepoint: 1114111

Options not present in a file keep their defaults.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lexgen.config'.
func tracer() tracing.Trace {
	return tracing.Select("lexgen.config")
}
