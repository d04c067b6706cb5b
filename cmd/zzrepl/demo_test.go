package main

import (
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"
	"github.com/npillmayer/lexgen/config"
	"github.com/npillmayer/lexgen/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func demoScanner(t *testing.T) *scanner.Tables {
	t.Helper()
	ts, err := makeDemoTables(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	return scanner.MustLoad(ts)
}

func payloads(rows []tokenRow) []string {
	p := make([]string, len(rows))
	for i, r := range rows {
		p[i] = r.Payload + " " + r.Text
	}
	return p
}

func TestDemoScanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	tab := demoScanner(t)
	rows, errs := scanInput(tab, config.Default(), strings.NewReader(`#define start  : x1 = 3.14 + "a b" // done`))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	expected := []string{
		`directive "#define"`,
		`label "start"`,
		`operator ":"`,
		`identifier "x1"`,
		`operator "="`,
		`number "3.14"`,
		`operator "+"`,
		`begin STRING "\""`,
		`string "a b"`,
		`end STRING "\""`,
		`comment "// done"`,
	}
	if diff, equal := messagediff.PrettyDiff(expected, payloads(rows)); !equal {
		t.Errorf("unexpected tokens:\n%s", diff)
	}
	if rows[8].State != "STRING" || rows[0].Position != "1:1" || rows[3].Position != "1:18" {
		t.Errorf("unexpected token details: %+v, %+v, %+v", rows[0], rows[3], rows[8])
	}
}

func TestDemoScannerErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	tab := demoScanner(t)
	rows, errs := scanInput(tab, config.Default(), strings.NewReader(`a # b "open`))
	expected := []string{`identifier "a"`, `identifier "b"`, `begin STRING "\""`, `string "open"`,
		`unterminated string ""`}
	if diff, equal := messagediff.PrettyDiff(expected, payloads(rows)); !equal {
		t.Errorf("unexpected tokens:\n%s", diff)
	}
	if len(errs) != 2 || !scanner.IsNoMatch(errs[0]) || errs[1].Error() != "unterminated string" {
		t.Errorf("expected a no-match error and an unterminated string, have %v", errs)
	}
}
