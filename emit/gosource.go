package emit

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/pack"
	"github.com/npillmayer/lexgen/tables"
)

const (
	modulePath    = "github.com/npillmayer/lexgen"
	automatonPath = modulePath + "/automaton"
	packPath      = modulePath + "/pack"
	scannerPath   = modulePath + "/scanner"
	tablesPath    = modulePath + "/tables"
)

// unitsPerLine is the number of table units per line of generated code.
const unitsPerLine = 16

// Params controls the names in generated code.
type Params struct {
	Package string // package clause of the generated file
	Prefix  string // prefix for all top-level identifiers, may be empty
}

// ErrParams is returned for unusable package names or prefixes.
var ErrParams = errors.New("invalid code generation parameters")

func (p Params) validate() error {
	if !token.IsIdentifier(p.Package) {
		return fmt.Errorf("%w: package name %q", ErrParams, p.Package)
	}
	if p.Prefix != "" && !token.IsIdentifier(p.Prefix) {
		return fmt.Errorf("%w: prefix %q", ErrParams, p.Prefix)
	}
	return nil
}

// exported returns an exported identifier for name.
func (p Params) exported(name string) string {
	return upperFirst(p.Prefix + name)
}

// private returns an unexported identifier for name.
func (p Params) private(name string) string {
	return lowerFirst(p.Prefix + name)
}

// GoSource writes a Go source file for table set ts to w. The file contains
//
//   - constants <Prefix>State<Name> for the ids of the lexical states,
//   - constants <Prefix>Label<Payload> for action labels,
//   - the table set as variable <prefix>TableSet,
//   - a function New<Prefix>Scanner(io.Reader, ...scanner.Option).
//
// The output is formatted with gofmt.
func GoSource(ts *tables.TableSet, params Params, w io.Writer) error {
	if err := params.validate(); err != nil {
		return err
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("emitting Go source: %w", err)
	}
	f := jen.NewFile(params.Package)
	f.HeaderComment("Code generated by lexgen. DO NOT EDIT.")
	f.ImportName(automatonPath, "automaton")
	f.ImportName(packPath, "pack")
	f.ImportName(scannerPath, "scanner")
	f.ImportName(tablesPath, "tables")
	//
	tsName := params.private("TableSet")
	once, loaded := params.private("TablesOnce"), params.private("Tables")
	ctor := "New" + params.exported("Scanner")
	names := newNamer(tsName, once, loaded, ctor)
	//
	f.Comment("Lexical states, to be used with Scanner.Begin.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for k, name := range ts.LexStates {
			id := names.unique(params.exported("State" + identifier(name)))
			g.Id(id).Op("=").Lit(2 * k)
		}
	})
	if len(ts.Actions) > 0 {
		f.Line()
		f.Comment("Action labels, as reported in Match.Label.")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, a := range ts.Actions {
				id := names.unique(params.exported("Label" + identifier(a.Payload)))
				g.Id(id).Op("=").Lit(a.Label).Comment(fmt.Sprintf("%q", a.Payload))
			}
		})
	}
	f.Line()
	f.Var().Id(tsName).Op("=").Op("&").Qual(tablesPath, "TableSet").Values(tableSetDict(ts))
	f.Line()
	f.Var().Defs(
		jen.Id(once).Qual("sync", "Once"),
		jen.Id(loaded).Op("*").Qual(scannerPath, "Tables"),
	)
	f.Line()
	f.Commentf("%s creates a scanner reading from r. Tables are unpacked on first use.", ctor)
	f.Func().Id(ctor).Params(
		jen.Id("r").Qual("io", "Reader"),
		jen.Id("opts").Op("...").Qual(scannerPath, "Option"),
	).Op("*").Qual(scannerPath, "Scanner").Block(
		jen.Id(once).Dot("Do").Call(jen.Func().Params().Block(
			jen.Id(loaded).Op("=").Qual(scannerPath, "MustLoad").Call(jen.Id(tsName)),
		)),
		jen.Return(jen.Qual(scannerPath, "New").Call(jen.Id(loaded), jen.Id("r"), jen.Id("opts").Op("..."))),
	)
	tracer().Infof("emitting Go source for %d states, %d actions", ts.NumStates, len(ts.Actions))
	if err := f.Render(w); err != nil {
		return fmt.Errorf("emitting Go source: %w", err)
	}
	return nil
}

func tableSetDict(ts *tables.TableSet) jen.Dict {
	actions := make([]jen.Code, len(ts.Actions))
	for i, a := range ts.Actions {
		actions[i] = jen.Values(jen.Dict{
			jen.Id("Label"):      jen.Lit(a.Label),
			jen.Id("Payload"):    jen.Lit(a.Payload),
			jen.Id("Kind"):       jen.Qual(automatonPath, kindName(a.Kind)),
			jen.Id("LookLength"): jen.Lit(a.LookLength),
			jen.Id("Entry"):      jen.Lit(a.Entry),
		})
	}
	eof := make([]jen.Code, len(ts.EOF))
	for i, label := range ts.EOF {
		eof[i] = jen.Lit(label)
	}
	states := make([]jen.Code, len(ts.LexStates))
	for i, name := range ts.LexStates {
		states[i] = jen.Lit(name)
	}
	return jen.Dict{
		jen.Id("UnicodeVersion"): jen.Lit(ts.UnicodeVersion),
		jen.Id("MaxCodepoint"):   jen.Lit(int(ts.MaxCodepoint)),
		jen.Id("NumStates"):      jen.Lit(ts.NumStates),
		jen.Id("NumCols"):        jen.Lit(ts.NumCols),
		jen.Id("LexStates"):      jen.Index().String().Values(states...),
		jen.Id("CMap"):           packed(ts.CMap),
		jen.Id("Action"):         packed(ts.Action),
		jen.Id("RowMap"):         packed(ts.RowMap),
		jen.Id("Trans"):          packed(ts.Trans),
		jen.Id("Attribute"):      packed(ts.Attribute),
		jen.Id("LexState"):       packed(ts.LexState),
		jen.Id("Actions"):        jen.Index().Qual(tablesPath, "ActionEntry").Values(actions...),
		jen.Id("EOF"):            jen.Index().Int().Values(eof...),
		jen.Id("DefaultEOF"):     jen.Lit(ts.DefaultEOF),
	}
}

func packed(p *pack.Packed) *jen.Statement {
	scheme := "CountScheme"
	if p.Scheme == pack.HiLowScheme {
		scheme = "HiLowScheme"
	}
	return jen.Op("&").Qual(packPath, "Packed").Values(jen.Dict{
		jen.Id("Scheme"):      jen.Qual(packPath, scheme),
		jen.Id("Translation"): jen.Lit(p.Translation),
		jen.Id("Length"):      jen.Lit(p.Length),
		jen.Id("Data"):        units(p.Data),
	})
}

// units renders a []uint16 literal with a fixed number of values per line.
func units(data []uint16) *jen.Statement {
	var lines []jen.Code
	for i := 0; i < len(data); i += unitsPerLine {
		end := i + unitsPerLine
		if end > len(data) {
			end = len(data)
		}
		line := make([]jen.Code, end-i)
		for j, u := range data[i:end] {
			line[j] = jen.Lit(int(u))
		}
		lines = append(lines, jen.List(line...))
	}
	return jen.Index().Uint16().Custom(jen.Options{
		Open:      "{",
		Close:     "}",
		Separator: ",",
		Multi:     true,
	}, lines...)
}

// namer hands out top-level identifiers, each at most once. Names which
// are taken get the smallest numeric suffix ≥ 2 which makes them unique.
type namer struct {
	used map[string]bool
}

func newNamer(reserved ...string) *namer {
	n := &namer{used: make(map[string]bool)}
	for _, name := range reserved {
		n.used[name] = true
	}
	return n
}

func (n *namer) unique(name string) string {
	id := name
	for i := 2; n.used[id]; i++ {
		id = fmt.Sprintf("%s%d", name, i)
	}
	n.used[id] = true
	return id
}

func kindName(k automaton.LookaheadKind) string {
	switch k {
	case automaton.LookFixedBase:
		return "LookFixedBase"
	case automaton.LookFixedLook:
		return "LookFixedLook"
	case automaton.LookFiniteChoice:
		return "LookFiniteChoice"
	case automaton.LookGeneral:
		return "LookGeneral"
	}
	return "LookNone"
}

// identifier converts an arbitrary string into the tail of a Go identifier,
// in camel case: "begin STRING" → "BeginSTRING", "" → "Empty".
func identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Empty"
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
