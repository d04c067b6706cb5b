package emit

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/lexgen/tables"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func demoTables(t *testing.T) *tables.TableSet {
	t.Helper()
	letters := charclass.NewIntervalSet(charclass.Interval{Start: 'a', End: 'z'})
	b := automaton.NewBuilder(automaton.DefaultOptions()).ExclusiveState("STRING")
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ident")
	b.Rule(automaton.Lit(`"`), "begin STRING")
	b.Rule(automaton.Plus(automaton.Chars(letters)), "text").In("STRING")
	b.Rule(automaton.Lit(`"`), "begin YYINITIAL").In("STRING")
	b.Rule(automaton.Plus(automaton.Chars(letters)), "label").FollowedBy(automaton.Plus(automaton.Lit(":")))
	b.EOF("unterminated string", "STRING")
	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	ts, err := tables.Generate(a)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

// elementCount finds the composite literal for key in a table set literal and
// returns the number of units of its Data field.
func elementCount(file *ast.File, key string) int {
	count := -1
	ast.Inspect(file, func(n ast.Node) bool {
		kv, ok := n.(*ast.KeyValueExpr)
		if !ok {
			return true
		}
		if id, ok := kv.Key.(*ast.Ident); !ok || id.Name != key {
			return true
		}
		u, ok := kv.Value.(*ast.UnaryExpr)
		if !ok {
			return true
		}
		lit := u.X.(*ast.CompositeLit)
		for _, elt := range lit.Elts {
			field := elt.(*ast.KeyValueExpr)
			if field.Key.(*ast.Ident).Name == "Data" {
				count = len(field.Value.(*ast.CompositeLit).Elts)
			}
		}
		return false
	})
	return count
}

func TestGoSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.emit")
	defer teardown()
	//
	ts := demoTables(t)
	var buf bytes.Buffer
	if err := GoSource(ts, Params{Package: "calc", Prefix: "Calc"}, &buf); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	t.Logf("\n%s", src)
	if !strings.HasPrefix(src, "// Code generated by lexgen. DO NOT EDIT.") {
		t.Errorf("expected generated-code header")
	}
	file, err := parser.ParseFile(token.NewFileSet(), "calc.go", src, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	if file.Name.Name != "calc" {
		t.Errorf("expected package calc, have %s", file.Name.Name)
	}
	var consts, vars, funcs []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, name := range vs.Names {
						if d.Tok == token.CONST {
							consts = append(consts, name.Name)
						} else {
							vars = append(vars, name.Name)
						}
					}
				}
			}
		case *ast.FuncDecl:
			funcs = append(funcs, d.Name.Name)
		}
	}
	expected := []string{
		"CalcLabelBeginSTRING", "CalcLabelBeginYYINITIAL", "CalcLabelIdent",
		"CalcLabelLabel", "CalcLabelText", "CalcLabelUnterminatedString",
		"CalcStateSTRING", "CalcStateYYINITIAL",
	}
	sort.Strings(consts)
	if diff, equal := messagediff.PrettyDiff(expected, consts); !equal {
		t.Errorf("unexpected constants:\n%s", diff)
	}
	if diff, equal := messagediff.PrettyDiff([]string{"calcTableSet", "calcTablesOnce", "calcTables"}, vars); !equal {
		t.Errorf("unexpected variables:\n%s", diff)
	}
	if len(funcs) != 1 || funcs[0] != "NewCalcScanner" {
		t.Errorf("expected constructor NewCalcScanner, have %v", funcs)
	}
	if n := elementCount(file, "Trans"); n != len(ts.Trans.Data) {
		t.Errorf("expected %d units in Trans, have %d", len(ts.Trans.Data), n)
	}
	if n := elementCount(file, "CMap"); n != len(ts.CMap.Data) {
		t.Errorf("expected %d units in CMap, have %d", len(ts.CMap.Data), n)
	}
	if !strings.Contains(src, "automaton.LookGeneral") {
		t.Errorf("expected general lookahead action in output")
	}
}

func TestGoSourceRejectsBadParams(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.emit")
	defer teardown()
	//
	ts := demoTables(t)
	for _, p := range []Params{{Package: ""}, {Package: "my-pkg"}, {Package: "calc", Prefix: "1x"}} {
		if err := GoSource(ts, p, &bytes.Buffer{}); !errors.Is(err, ErrParams) {
			t.Errorf("expected %+v to be rejected, have %v", p, err)
		}
	}
	var buf bytes.Buffer
	if err := GoSource(ts, Params{Package: "lexer"}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "func NewScanner(") || !strings.Contains(buf.String(), "var tableSet =") {
		t.Errorf("expected unprefixed identifiers")
	}
}

func TestIdentifier(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.emit")
	defer teardown()
	//
	for in, out := range map[string]string{
		"begin STRING": "BeginSTRING",
		"ident":        "Ident",
		"a-b_c 1":      "ABC1",
		"ümlaut":       "Ümlaut",
		"+":            "Empty",
	} {
		if id := identifier(in); id != out {
			t.Errorf("expected identifier(%q) = %q, have %q", in, out, id)
		}
	}
}

func TestGoSourceUniqueIdentifiers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.emit")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions()).ExclusiveState("a-b").ExclusiveState("a_b")
	for i, payload := range []string{"x", "x!", "x2", "+", "-"} {
		b.Rule(automaton.Lit(strings.Repeat("z", i+1)), payload)
	}
	b.Rule(automaton.Lit("q"), "q").In("a-b")
	b.Rule(automaton.Lit("q"), "q").In("a_b")
	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	ts, err := tables.Generate(a)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := GoSource(ts, Params{Package: "clash"}, &buf); err != nil {
		t.Fatal(err)
	}
	file, err := parser.ParseFile(token.NewFileSet(), "clash.go", buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("generated source does not parse: %v", err)
	}
	declared := make(map[string]int)
	consts := 0
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			declared[d.Name.Name]++
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, name := range vs.Names {
						declared[name.Name]++
						if d.Tok == token.CONST {
							consts++
						}
					}
				}
			}
		}
	}
	for name, n := range declared {
		if n > 1 {
			t.Errorf("identifier %s declared %d times", name, n)
		}
	}
	if want := len(ts.LexStates) + len(ts.Actions); consts != want {
		t.Errorf("expected %d constants, have %d", want, consts)
	}
	if declared["StateAB"] != 1 || declared["StateAB2"] != 1 {
		t.Errorf("expected StateAB and StateAB2, have %v", declared)
	}
}
