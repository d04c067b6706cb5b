package scanner

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode"

	"github.com/d4l3k/messagediff"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/charclass"
	"github.com/npillmayer/lexgen/tables"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var (
	letters = charclass.NewIntervalSet(charclass.Interval{Start: 'a', End: 'z'})
	digits  = charclass.NewIntervalSet(charclass.Interval{Start: '0', End: '9'})
)

func compile(t *testing.T, b *automaton.Builder) *Tables {
	t.Helper()
	a, err := b.Build()
	if err != nil {
		t.Fatalf("building automaton: %v", err)
	}
	ts, err := tables.Generate(a)
	if err != nil {
		t.Fatalf("generating tables: %v", err)
	}
	tab, err := Load(ts)
	if err != nil {
		t.Fatalf("loading tables: %v", err)
	}
	return tab
}

// scanAll scans input and returns a list of "payload:text" strings. Payloads
// of the form "begin STATE" switch the lexical state.
func scanAll(t *testing.T, s *Scanner) []string {
	t.Helper()
	var toks []string
	for i := 0; i < 1000; i++ {
		m, err := s.Next()
		if err == io.EOF {
			return toks
		}
		if err != nil {
			t.Fatalf("unexpected scan error: %v", err)
		}
		if strings.HasPrefix(m.Payload, "begin ") {
			id, ok := s.t.LexStateID(strings.TrimPrefix(m.Payload, "begin "))
			if !ok {
				t.Fatalf("unknown state in %q", m.Payload)
			}
			s.Begin(id)
		}
		toks = append(toks, m.Payload+":"+m.Text)
		if m.EOF {
			return toks
		}
	}
	t.Fatalf("scanner does not terminate")
	return nil
}

func expectTokens(t *testing.T, got []string, expected ...string) {
	t.Helper()
	if len(got) == 0 && len(expected) == 0 {
		return
	}
	if diff, equal := messagediff.PrettyDiff(expected, got); !equal {
		t.Errorf("unexpected tokens %v:\n%s", got, diff)
	}
}

func TestLongestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Lit("a"), "T1")
	b.Rule(automaton.Lit("ab"), "T2")
	b.Rule(automaton.Lit("b"), "B")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("ab"))), "T2:ab")
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("aab"))), "T1:a", "T2:ab")
}

func TestPriorityTieBreak(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Lit("a")), "T1")
	b.Rule(automaton.Lit("aa"), "T2")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("aa"))), "T1:aa")
}

func TestFixedBaseLookahead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Lit("a"), "A").FollowedBy(automaton.Plus(automaton.Lit("b")))
	b.Rule(automaton.Plus(automaton.Lit("b")), "B")
	b.Rule(automaton.Lit("c"), "C")
	tab := compile(t, b)
	s := New(tab, strings.NewReader("abbbc"))
	m, err := s.Next()
	if err != nil || m.Payload != "A" || m.Text != "a" {
		t.Fatalf("expected token A:a, have %s:%s (%v)", m.Payload, m.Text, err)
	}
	if m.Span.To() != 1 {
		t.Errorf("expected cursor to be placed before the first b, span is %s", m.Span)
	}
	expectTokens(t, scanAll(t, s), "B:bbb", "C:c")
}

func TestGeneralLookahead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(letters)), "WORD").FollowedBy(automaton.Plus(automaton.Chars(digits)))
	b.Rule(automaton.Plus(automaton.Lit("a")), "AS").FollowedBy(
		automaton.Cat(automaton.Star(automaton.Lit("a")), automaton.Lit("b")))
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ID")
	b.Rule(automaton.Plus(automaton.Chars(digits)), "NUM")
	b.Rule(automaton.Lit(" "), "SP")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("abc123 xyz"))),
		"WORD:abc", "NUM:123", "SP: ", "ID:xyz")
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("aaab"))),
		"AS:aaa", "ID:b")
}

func TestGeneralLookaheadFunction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(letters)), "W").FollowedBy(
		automaton.Cat(automaton.Star(automaton.Chars(letters)), automaton.Plus(automaton.Chars(digits))))
	tab := compile(t, b)
	entry := -1
	for _, a := range tab.Actions() {
		if a.Kind == automaton.LookGeneral {
			entry = a.Entry
		}
	}
	if entry < 0 {
		t.Fatalf("expected a general lookahead action")
	}
	text := []byte("xxabcd12yy")
	var fin []bool
	// match is "abcd12" at [2:8]; trailing context is the shortest possible suffix
	end, fin := GeneralLookahead(tab, entry, text, 2, 8, fin)
	if end != 6 {
		t.Errorf("expected match to end at 6, ends at %d", end)
	}
	if cap(fin) < 7 {
		t.Errorf("expected scratch buffer to be grown")
	}
	end, _ = GeneralLookahead(tab, entry, []byte("a1"), 0, 2, fin)
	if end != 1 {
		t.Errorf("expected match to end at 1, ends at %d", end)
	}
}

func TestFixedAndFiniteLookahead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(letters)), "KEY").FollowedBy(automaton.Lit("=>"))
	b.Rule(automaton.Plus(automaton.Chars(letters)), "W").FollowedBy(automaton.Or(automaton.Lit("1"), automaton.Lit("22")))
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ID")
	b.Rule(automaton.Plus(automaton.Chars(digits)), "NUM")
	b.Rule(automaton.Lit("=>"), "ARROW")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("ab=>cd22ef1gh"))),
		"KEY:ab", "ARROW:=>", "W:cd", "NUM:22", "W:ef", "NUM:1", "ID:gh")
}

func lineRules(crlf bool) *automaton.Builder {
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ID")
	if crlf {
		b.Rule(automaton.Lit("\r\n"), "NL")
	}
	b.Rule(automaton.Lit("\r"), "CR")
	b.Rule(automaton.Lit("\n"), "LF")
	b.Rule(automaton.Lit("\u2028"), "LS")
	b.Rule(automaton.Lit(" "), "SP")
	return b
}

type position struct {
	Token        string
	Line, Column int
}

func positions(t *testing.T, s *Scanner) []position {
	t.Helper()
	var pos []position
	for {
		m, err := s.Next()
		if err == io.EOF {
			return pos
		}
		if err != nil {
			t.Fatalf("unexpected scan error: %v", err)
		}
		pos = append(pos, position{m.Payload, m.Line, m.Column})
	}
}

func TestLineColumnTracking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	for _, crlf := range []bool{true, false} {
		tab := compile(t, lineRules(crlf))
		for _, size := range []int{DefaultBufferSize, 4} {
			r := iotest.OneByteReader(strings.NewReader("x\r\nyy z\rw\u2028v"))
			s := New(tab, r, BufferSize(size))
			expected := []position{
				{"ID", 0, 0}, {"NL", 0, 1},
				{"ID", 1, 0}, {"SP", 1, 2}, {"ID", 1, 3}, {"CR", 1, 4},
				{"ID", 2, 0}, {"LS", 2, 1},
				{"ID", 3, 0},
			}
			if !crlf {
				expected = append(append(expected[:2:2], position{"LF", 0, 0}), expected[2:]...)
				expected[1].Token = "CR"
			}
			if diff, equal := messagediff.PrettyDiff(expected, positions(t, s)); !equal {
				t.Errorf("crlf=%v, buffer=%d: unexpected positions:\n%s", crlf, size, diff)
			}
			if s.Char() != 11 {
				t.Errorf("expected 11 codepoints to be consumed, have %d", s.Char())
			}
		}
	}
}

func TestBOLDispatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Lit("x"), "BOLX").AtBOL()
	b.Rule(automaton.Lit("x"), "X")
	b.Rule(automaton.Lit(" "), "SP")
	b.Rule(automaton.Lit("\n"), "NL")
	b.Rule(automaton.Lit("\r"), "CR")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader("x x\nx\r\nx\rx"))),
		"BOLX:x", "SP: ", "X:x", "NL:\n", "BOLX:x", "CR:\r", "NL:\n", "BOLX:x", "CR:\r", "BOLX:x")
}

func TestEndOfFileActions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions()).ExclusiveState("STRING")
	b.Rule(automaton.Lit(`"`), "begin STRING")
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ID")
	b.Rule(automaton.Plus(automaton.Chars(letters)), "TEXT").In("STRING")
	b.Rule(automaton.Lit(`"`), "begin YYINITIAL").In("STRING")
	b.EOF("unterminated", "STRING")
	tab := compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader(`a"bc`))),
		"ID:a", `begin STRING:"`, "TEXT:bc", "unterminated:")
	expectTokens(t, scanAll(t, New(tab, strings.NewReader(`a"bc"`))),
		"ID:a", `begin STRING:"`, "TEXT:bc", `begin YYINITIAL:"`)
	b.EOF("done")
	tab = compile(t, b)
	expectTokens(t, scanAll(t, New(tab, strings.NewReader(`a`))), "ID:a", "done:")
	s := New(tab, strings.NewReader(""))
	if m, err := s.Next(); err != nil || !m.EOF || m.Payload != "done" {
		t.Errorf("expected default end-of-file action on empty input, have %v/%v", m, err)
	}
	if !s.AtEOF() {
		t.Errorf("expected scanner to be at end of input")
	}
}

func TestNoMatchRecovery(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(letters)), "ID")
	b.Rule(automaton.Lit("abc!"), "BANG")
	tab := compile(t, b)
	s := New(tab, strings.NewReader("ab?€cd"))
	if m, err := s.Next(); err != nil || m.Text != "ab" {
		t.Fatalf("expected ab, have %q (%v)", m.Text, err)
	}
	for _, r := range []rune{'?', '€'} {
		_, err := s.Next()
		var serr *ScanError
		if !errors.As(err, &serr) || serr.Kind != NoMatch || serr.Rune != r {
			t.Fatalf("expected no match for %q, have %v", r, err)
		}
		if !IsNoMatch(err) {
			t.Errorf("IsNoMatch does not recognize %v", err)
		}
	}
	m, err := s.Next()
	if err != nil || m.Text != "cd" || m.Span.From() != 6 || m.Column != 4 {
		t.Errorf("expected cd at offset 6, column 4, have %q at %s, column %d (%v)",
			m.Text, m.Span, m.Column, err)
	}
	// prefix of a longer rule at end of input
	s = New(tab, strings.NewReader("abc"))
	if m, err := s.Next(); err != nil || m.Text != "abc" {
		t.Errorf("expected abc, have %q (%v)", m.Text, err)
	}
}

func TestMultiByteInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Plus(automaton.Chars(charclass.FromRangeTable(unicode.L, charclass.MaxCodepoint))), "WORD")
	b.Rule(automaton.Lit(" "), "SP")
	b.Rule(automaton.Lit("😀"), "SMILE")
	tab := compile(t, b)
	input := "grüße 😀 日本語"
	s := New(tab, iotest.OneByteReader(strings.NewReader(input)), BufferSize(4))
	var spans []string
	for {
		m, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		spans = append(spans, fmt.Sprintf("%s@%d:%d", m.Text, m.Span.From(), m.Column))
	}
	expected := []string{"grüße@0:0", " @7:5", "😀@8:6", " @12:7", "日本語@13:8"}
	if diff, equal := messagediff.PrettyDiff(expected, spans); !equal {
		t.Errorf("unexpected tokens:\n%s", diff)
	}
}

func TestPushBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Lit("abc"), "ABC")
	b.Rule(automaton.Lit("bc"), "BC")
	tab := compile(t, b)
	s := New(tab, strings.NewReader("abc"))
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	s.PushBack(2)
	if s.Text() != "a" {
		t.Errorf("expected text to be reduced to a, is %q", s.Text())
	}
	m, err := s.Next()
	if err != nil || m.Payload != "BC" || m.Column != 1 {
		t.Errorf("expected BC at column 1 after push back, have %v (%v)", m, err)
	}
}

// flakyReader fails once after a given number of bytes.
type flakyReader struct {
	data   string
	pos    int
	failAt int
	failed bool
}

var errFlaky = errors.New("flaky")

func (fr *flakyReader) Read(p []byte) (int, error) {
	if fr.pos == fr.failAt && !fr.failed {
		fr.failed = true
		return 0, errFlaky
	}
	if fr.pos >= len(fr.data) {
		return 0, io.EOF
	}
	p[0] = fr.data[fr.pos]
	fr.pos++
	return 1, nil
}

func TestIOErrorRetry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	tab := compile(t, lineRules(true))
	for failAt := 0; failAt < 9; failAt++ {
		s := New(tab, &flakyReader{data: "ab\r\ncd ef", failAt: failAt}, BufferSize(4))
		var toks []position
		failures := 0
		for i := 0; i < 20; i++ {
			m, err := s.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				if !errors.Is(err, errFlaky) {
					t.Fatalf("failAt=%d: unexpected error %v", failAt, err)
				}
				failures++
				continue
			}
			toks = append(toks, position{m.Payload + ":" + m.Text, m.Line, m.Column})
		}
		expected := []position{{"ID:ab", 0, 0}, {"NL:\r\n", 0, 2}, {"ID:cd", 1, 0}, {"SP: ", 1, 2}, {"ID:ef", 1, 3}}
		if diff, equal := messagediff.PrettyDiff(expected, toks); !equal {
			t.Errorf("failAt=%d: unexpected tokens after retry:\n%s", failAt, diff)
		}
		if failures != 1 {
			t.Errorf("failAt=%d: expected exactly 1 I/O error, have %d", failAt, failures)
		}
	}
}

func TestReset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	tab := compile(t, lineRules(true))
	s := New(tab, strings.NewReader("ab\ncd"))
	scanAll(t, s)
	s.Reset(strings.NewReader("x"))
	m, err := s.Next()
	if err != nil || m.Text != "x" || m.Line != 0 || m.Span.From() != 0 {
		t.Errorf("expected fresh scan after reset, have %v (%v)", m, err)
	}
}

func TestLoadRejectsEOFLabels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Lit("a"), "A")
	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	ts, err := tables.Generate(a)
	if err != nil {
		t.Fatal(err)
	}
	ts.EOF[0] = 7
	if _, err := Load(ts); err == nil {
		t.Errorf("expected end-of-file label 7 with %d action(s) to be rejected", len(ts.Actions))
	}
	ts.EOF[0], ts.DefaultEOF = 0, 2
	if _, err := Load(ts); err == nil {
		t.Errorf("expected default end-of-file label 2 to be rejected")
	}
}

func TestBeginRejectsInvalidStates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions()).ExclusiveState("X")
	b.Rule(automaton.Lit("a"), "A")
	b.Rule(automaton.Lit("a"), "XA").In("X")
	tab := compile(t, b)
	s := New(tab, strings.NewReader("a"))
	for _, id := range []int{-2, 1, 3, 4} {
		if err := s.Begin(id); !errors.Is(err, ErrLexState) {
			t.Errorf("expected state id %d to be rejected, have %v", id, err)
		}
	}
	if s.LexicalState() != Initial {
		t.Errorf("expected lexical state to be unchanged, is %d", s.LexicalState())
	}
	if err := s.Begin(2); err != nil {
		t.Fatal(err)
	}
	if m, err := s.Next(); err != nil || m.Payload != "XA" {
		t.Errorf("expected XA in state X, have %v (%v)", m, err)
	}
}

func TestEmptyMatchDoesNotConsume(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lexgen.scanner")
	defer teardown()
	//
	b := automaton.NewBuilder(automaton.DefaultOptions())
	b.Rule(automaton.Star(automaton.Lit("a")), "A")
	s := New(compile(t, b), strings.NewReader("aab"))
	var texts []string
	for i := 0; i < 3; i++ {
		m, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		texts = append(texts, m.Text)
		if i > 0 && (m.Span.Len() != 0 || m.Span.From() != 2) {
			t.Errorf("expected zero-length match at 2, have %v", m.Span)
		}
	}
	if diff, equal := messagediff.PrettyDiff([]string{"aa", "", ""}, texts); !equal {
		t.Errorf("unexpected matches:\n%s", diff)
	}
}
