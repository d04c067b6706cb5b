package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"
	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDefaultsAreValid(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.config")
	defer teardown()
	//
	opts := Default()
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}
	aopts := opts.AutomatonOptions()
	if !aopts.Minimize || aopts.LegacyDot || aopts.MaxCodepoint != charclass.MaxCodepoint {
		t.Errorf("unexpected automaton options %+v", aopts)
	}
	if len(opts.ScannerOptions()) != 1 {
		t.Errorf("expected a buffer size option for scanners")
	}
}

func TestLoadYAML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.config")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "lexgen.yaml")
	data := []byte("bufferSize: 64\nlegacyDot: true\nencoding: ISO-8859-1\nmaxCodepoint: 255\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := Default()
	expected.BufferSize = 64
	expected.LegacyDot = true
	expected.Encoding = "ISO-8859-1"
	expected.MaxCodepoint = 255
	if diff, equal := messagediff.PrettyDiff(expected, opts); !equal {
		t.Errorf("unexpected options:\n%s", diff)
	}
	// defaults survive a round trip through YAML
	y, err := Default().YAML()
	if err != nil {
		t.Fatal(err)
	}
	if opts, err = Parse(y); err != nil || opts != Default() {
		t.Errorf("expected default options from %s, have %+v (%v)", y, opts, err)
	}
}

func TestInvalidOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.config")
	defer teardown()
	//
	for _, y := range []string{
		"bufferSize: 2",
		"maxCodepoint: 1114112",
		"maxCodepoint: 65",
		"encoding: no-such-encoding",
		"normalization: NFKX",
		"unicodeVersion: 1.0.0",
	} {
		if _, err := Parse([]byte(y)); !errors.Is(err, ErrInvalid) {
			t.Errorf("expected %q to be rejected, have %v", y, err)
		}
	}
	if _, err := Parse([]byte("noSuchOption: 1")); err == nil {
		t.Errorf("expected unknown key to be rejected")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected missing file to be reported")
	}
}

func TestDecodeInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.config")
	defer teardown()
	//
	opts := Default()
	r := strings.NewReader("plain")
	if in, err := opts.DecodeInput(r); err != nil || in != io.Reader(r) {
		t.Errorf("expected UTF-8 input to be passed through, have %v", err)
	}
	opts.Encoding = "ISO-8859-1"
	in, err := opts.DecodeInput(bytes.NewReader([]byte{'g', 'r', 0xFC, 0xDF, 'e'}))
	if err != nil {
		t.Fatal(err)
	}
	if out, _ := io.ReadAll(in); string(out) != "grüße" {
		t.Errorf("expected latin-1 input to be decoded, have %q", out)
	}
	opts.Normalization = "NFC"
	in, err = opts.DecodeInput(bytes.NewReader([]byte{'e', 0xE9}))
	if err != nil {
		t.Fatal(err)
	}
	if out, _ := io.ReadAll(in); string(out) != "eé" {
		t.Errorf("expected decoded input, have %q", out)
	}
	opts.Encoding = "UTF-8"
	in, err = opts.DecodeInput(strings.NewReader("e\u0301"))
	if err != nil {
		t.Fatal(err)
	}
	if out, _ := io.ReadAll(in); string(out) != "\u00e9" {
		t.Errorf("expected NFC normalized input, have %q", out)
	}
}
