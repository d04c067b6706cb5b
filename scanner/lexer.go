package scanner

import (
	"fmt"
	"strings"

	"github.com/npillmayer/lexgen"
)

// ActionFunc is the user code of an action. It receives the lexer and the
// match and either returns a token, or returns false to continue scanning.
type ActionFunc func(l *Lexer, m Match) (lexgen.Token, bool)

// Lexer adapts a Scanner to the Tokenizer interface. Actions are looked up by
// their payload.
type Lexer struct {
	*Scanner
	actions map[string]ActionFunc
	Error   func(error) // error handler
	done    bool
	more    strings.Builder // text kept by More
	moreSpn lexgen.Span     // span of text kept by More
}

var _ Tokenizer = (*Lexer)(nil)

// Default error reporting function for lexers.
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NewLexer creates a lexer on top of a scanner. actions maps the payloads
// of the scanner's rules to action functions. Payloads without an action
// function are reported as errors and skipped.
func NewLexer(s *Scanner, actions map[string]ActionFunc) *Lexer {
	return &Lexer{
		Scanner: s,
		actions: actions,
		Error:   logError,
	}
}

// SetErrorHandler sets an error handler for the lexer.
func (l *Lexer) SetErrorHandler(h func(error)) {
	if h == nil {
		l.Error = logError
		return
	}
	l.Error = h
}

// NextToken is part of the Tokenizer interface. Scan errors are reported to
// the error handler; scanning continues after the offending input. After the
// end of input, NextToken returns tokens of type EOF.
func (l *Lexer) NextToken() lexgen.Token {
	for !l.done {
		m, err := l.Next()
		if err != nil {
			if IsNoMatch(err) {
				l.Error(err)
				continue
			}
			if !m.EOF { // I/O error
				l.Error(err)
			}
			l.done = true
			break
		}
		if m.EOF {
			l.done = true // end-of-file actions run once
		}
		m = l.joined(m)
		action, ok := l.actions[m.Payload]
		if !ok {
			l.Error(fmt.Errorf("no action function for %q", m.Payload))
			continue
		}
		if token, emit := action(l, m); emit {
			return token
		}
	}
	return MakeDefaultToken(EOF, "", lexgen.Span{l.Offset(), l.Offset()})
}

// joined prepends text kept by More to m.
func (l *Lexer) joined(m Match) Match {
	if l.moreSpn.IsNull() && l.more.Len() == 0 {
		return m
	}
	if !m.EOF {
		m.Text = l.more.String() + m.Text
		m.Span = l.moreSpn.Extend(m.Span)
	}
	l.more.Reset()
	l.moreSpn = lexgen.Span{}
	return m
}

// --- Pre-defined actions ---------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*Lexer, Match) (lexgen.Token, bool) {
	return nil, false
}

// More is a pre-defined action which keeps the scanned match. Its text
// and span are prepended to the next match. Kept text is dropped at the
// end of input.
func More(l *Lexer, m Match) (lexgen.Token, bool) {
	if l.more.Len() == 0 && l.moreSpn.IsNull() {
		l.moreSpn = m.Span
	} else {
		l.moreSpn = l.moreSpn.Extend(m.Span)
	}
	l.more.WriteString(m.Text)
	return nil, false
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(typ lexgen.TokType) ActionFunc {
	return func(l *Lexer, m Match) (lexgen.Token, bool) {
		return MakeDefaultToken(typ, m.Text, m.Span), true
	}
}

// Begin is a pre-defined action which switches to a lexical state and then
// continues with action then. then may be nil, meaning Skip.
func Begin(state string, then ActionFunc) ActionFunc {
	return func(l *Lexer, m Match) (lexgen.Token, bool) {
		id, ok := l.t.LexStateID(state)
		if !ok {
			l.Error(fmt.Errorf("unknown lexical state %s", state))
		} else {
			l.Begin(id)
		}
		if then == nil {
			return nil, false
		}
		return then(l, m)
	}
}

// WithValue is a pre-defined action which wraps a match into a token with a
// value computed from the match text. Conversion errors are reported to the
// lexer's error handler and the match is skipped.
func WithValue(typ lexgen.TokType, conv func(string) (interface{}, error)) ActionFunc {
	return func(l *Lexer, m Match) (lexgen.Token, bool) {
		v, err := conv(m.Text)
		if err != nil {
			l.Error(fmt.Errorf("line %d, column %d: %w", m.Line+1, m.Column+1, err))
			return nil, false
		}
		tok := MakeDefaultToken(typ, m.Text, m.Span)
		tok.Val = v
		return tok, true
	}
}
