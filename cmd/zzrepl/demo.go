package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/lexgen/config"
	"github.com/npillmayer/lexgen/scanner"
	"github.com/npillmayer/lexgen/tables"
)

// We provide a small programming-language-like scanner as a default:
//
//  #directive      at the beginning of a line
//  // comment      up to the end of the line
//  label:          identifier followed by a colon, spaces allowed in between
//  identifier      letters, digits and '_', not starting with a digit
//  number          digits with an optional fraction
//  "string"        in an exclusive lexical state
//  operators       + - * / = < > ( ) { } ; , :
//
func makeDemoTables(opts config.Options) (*tables.TableSet, error) {
	max := opts.MaxCodepoint
	letter := charclass.FromRangeTable(unicode.L, max).AddRune('_')
	digit := charclass.FromRangeTable(unicode.Nd, max)
	ident := automaton.Cat(
		automaton.Chars(letter),
		automaton.Star(automaton.Chars(letter.Copy().Union(digit))),
	)
	digits := automaton.Plus(automaton.Chars(digit))
	strChars := charclass.SetOf("\"\n").Complement(max)
	//
	b := automaton.NewBuilder(opts.AutomatonOptions()).ExclusiveState("STRING")
	b.Rule(automaton.Cat(automaton.Lit("#"), ident), "directive").AtBOL()
	b.Rule(automaton.Cat(automaton.Lit("//"), automaton.Star(automaton.Dot())), "comment")
	b.Rule(ident, "label").FollowedBy(automaton.Cat(automaton.Star(automaton.AnyOf(" \t")), automaton.Lit(":")))
	b.Rule(ident, "identifier")
	b.Rule(automaton.Cat(digits, automaton.Opt(automaton.Cat(automaton.Lit("."), digits))), "number")
	b.Rule(automaton.AnyOf("+-*/=<>(){};,:"), "operator")
	b.Rule(automaton.Lit(`"`), "begin STRING")
	b.Rule(automaton.Plus(automaton.AnyOf(" \t\r\n")), "space")
	b.Rule(automaton.Plus(automaton.Chars(strChars)), "string").In("STRING")
	b.Rule(automaton.Lit(`"`), "end STRING").In("STRING")
	b.Rule(automaton.Lit("\n"), "newline in string").In("STRING")
	b.EOF("unterminated string", "STRING")
	a, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building demo scanner: %w", err)
	}
	tracer().Infof("demo automaton has %d states, %d character classes", a.NumStates(), a.NumClasses())
	return tables.Generate(a)
}

// tokenRow is a line in the token table printed for an input line.
type tokenRow struct {
	Position string
	Bytes    uint64 // length of the match in the decoded input
	State    string
	Label    string
	Payload  string
	Text     string
}

// scanInput scans input with tables t, switching lexical states as requested
// by payloads "begin <state>" and "end <state>". Whitespace is not reported.
func scanInput(t *scanner.Tables, opts config.Options, input io.Reader) ([]tokenRow, []error) {
	r, err := opts.DecodeInput(input)
	if err != nil {
		return nil, []error{err}
	}
	s := scanner.New(t, r, opts.ScannerOptions()...)
	var rows []tokenRow
	var errs []error
	for {
		state := t.LexStateName(s.LexicalState())
		m, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err)
			if scanner.IsNoMatch(err) {
				continue
			}
			break
		}
		if strings.HasPrefix(m.Payload, "begin ") {
			switchTo(s, t, strings.TrimPrefix(m.Payload, "begin "))
		} else if strings.HasPrefix(m.Payload, "end ") {
			switchTo(s, t, automaton.Initial)
		}
		if m.Payload != "space" {
			rows = append(rows, tokenRow{
				Position: fmt.Sprintf("%d:%d", m.Line+1, m.Column+1),
				Bytes:    m.Span.Len(),
				State:    state,
				Label:    strconv.Itoa(m.Label),
				Payload:  m.Payload,
				Text:     strconv.Quote(m.Text),
			})
		}
		if m.EOF {
			errs = append(errs, errors.New(m.Payload))
			break
		}
	}
	return rows, errs
}

func switchTo(s *scanner.Scanner, t *scanner.Tables, state string) {
	if id, ok := t.LexStateID(state); ok {
		s.Begin(id)
		return
	}
	tracer().Errorf("unknown lexical state %q", state)
}
