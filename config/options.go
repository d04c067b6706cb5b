package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/lexgen/scanner"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"sigs.k8s.io/yaml"
)

// MinBufferSize is the smallest acceptable scanner buffer size.
const MinBufferSize = 4

// Options configures table generation and scanners.
type Options struct {
	BufferSize     int    `json:"bufferSize"`     // initial size of a scanner's input buffer
	LegacyDot      bool   `json:"legacyDot"`      // '.' matches everything but '\n'
	Encoding       string `json:"encoding"`       // IANA name of the input encoding
	Normalization  string `json:"normalization"`  // "", "NFC" or "NFD"
	Minimize       bool   `json:"minimize"`       // minimize the DFA
	MaxCodepoint   rune   `json:"maxCodepoint"`   // largest codepoint of the alphabet
	UnicodeVersion string `json:"unicodeVersion"` // Unicode version of character properties
}

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid option")

// Default returns the default options: UTF-8 input, full Unicode range,
// minimized automata.
func Default() Options {
	return Options{
		BufferSize:     scanner.DefaultBufferSize,
		Encoding:       "UTF-8",
		Minimize:       true,
		MaxCodepoint:   charclass.MaxCodepoint,
		UnicodeVersion: unicode.Version,
	}
}

// Load reads options from a YAML file. Options missing in the file are set
// to their defaults.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("loading options: %w", err)
	}
	opts, err := Parse(data)
	if err != nil {
		return Options{}, fmt.Errorf("loading options from %s: %w", path, err)
	}
	return opts, nil
}

// Parse reads options from YAML data. Unknown keys are an error.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return Options{}, err
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	tracer().Debugf("options: %+v", opts)
	return opts, nil
}

// YAML returns the options in YAML format.
func (o Options) YAML() ([]byte, error) {
	return yaml.Marshal(o)
}

// Validate checks the ranges of options and resolves the encoding name.
func (o Options) Validate() error {
	if o.BufferSize < MinBufferSize {
		return fmt.Errorf("%w: buffer size %d < %d", ErrInvalid, o.BufferSize, MinBufferSize)
	}
	if o.MaxCodepoint < 0x7F || o.MaxCodepoint > charclass.MaxCodepoint {
		return fmt.Errorf("%w: max codepoint %#x out of range", ErrInvalid, o.MaxCodepoint)
	}
	if o.UnicodeVersion != unicode.Version {
		return fmt.Errorf("%w: Unicode version %q not supported, have %s", ErrInvalid,
			o.UnicodeVersion, unicode.Version)
	}
	if _, err := o.encoding(); err != nil {
		return err
	}
	if _, err := o.normalization(); err != nil {
		return err
	}
	return nil
}

// encoding resolves the encoding name. It returns nil for UTF-8.
func (o Options) encoding() (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(o.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", ErrInvalid, o.Encoding, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding %q not supported", ErrInvalid, o.Encoding)
	}
	if name, _ := ianaindex.IANA.Name(enc); name == "UTF-8" {
		return nil, nil
	}
	return enc, nil
}

func (o Options) normalization() (transform.Transformer, error) {
	switch strings.ToUpper(o.Normalization) {
	case "":
		return nil, nil
	case "NFC":
		return norm.NFC, nil
	case "NFD":
		return norm.NFD, nil
	}
	return nil, fmt.Errorf("%w: normalization form %q", ErrInvalid, o.Normalization)
}

// DecodeInput wraps r into a reader producing UTF-8, decoding from the
// configured encoding and applying the configured normalization form. If no
// conversion is necessary, r is returned.
func (o Options) DecodeInput(r io.Reader) (io.Reader, error) {
	enc, err := o.encoding()
	if err != nil {
		return nil, err
	}
	nf, err := o.normalization()
	if err != nil {
		return nil, err
	}
	var chain []transform.Transformer
	if enc != nil {
		chain = append(chain, enc.NewDecoder())
	}
	if nf != nil {
		chain = append(chain, nf)
	}
	switch len(chain) {
	case 0:
		return r, nil
	case 1:
		return transform.NewReader(r, chain[0]), nil
	}
	return transform.NewReader(r, transform.Chain(chain...)), nil
}

// AutomatonOptions returns the options for building automata.
func (o Options) AutomatonOptions() automaton.Options {
	return automaton.Options{
		LegacyDot:      o.LegacyDot,
		Minimize:       o.Minimize,
		MaxCodepoint:   o.MaxCodepoint,
		UnicodeVersion: o.UnicodeVersion,
	}
}

// ScannerOptions returns the options for creating scanners.
func (o Options) ScannerOptions() []scanner.Option {
	return []scanner.Option{scanner.BufferSize(o.BufferSize)}
}
