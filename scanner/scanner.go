package scanner

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/npillmayer/lexgen"
	"github.com/npillmayer/lexgen/automaton"
	"github.com/npillmayer/lexgen/tables"
)

// DefaultBufferSize is the initial size of a scanner's input buffer.
const DefaultBufferSize = 16384

// Initial is the id of the initial lexical state.
const Initial = 0

// Match is the result of a call to Scanner.Next.
type Match struct {
	Label   int    // action label, 0 at end of stream
	Payload string // action payload
	Text    string // matched text
	Span    lexgen.Span
	Line    int  // line of the first codepoint, starting at 0
	Column  int  // column of the first codepoint, starting at 0
	EOF     bool // end-of-file action or end of stream
}

// Scanner executes scanner tables on an input stream. A scanner must not be
// used by more than one goroutine at a time.
type Scanner struct {
	t          *Tables
	r          io.Reader
	buf        []byte
	startRead  int   // start of current token in buf
	currentPos int   // read position in buf
	markedPos  int   // end of longest match so far
	endRead    int   // end of valid bytes in buf
	base       int64 // stream offset of buf[0]
	readerEOF  bool  // reader is exhausted
	lexState   int   // 2k
	atBOL      bool
	char       int64 // codepoints before current token
	line       int
	column     int
	fin        []bool // scratch space for general lookahead
}

// Option configures a scanner.
type Option func(s *Scanner)

// BufferSize sets the initial size of the input buffer. The buffer grows if a
// single token does not fit.
func BufferSize(size int) Option {
	return func(s *Scanner) {
		if size < utf8.UTFMax {
			size = utf8.UTFMax
		}
		s.buf = make([]byte, size)
	}
}

// New creates a scanner for tables t, reading from r.
func New(t *Tables, r io.Reader, opts ...Option) *Scanner {
	s := &Scanner{t: t}
	for _, opt := range opts {
		opt(s)
	}
	if s.buf == nil {
		s.buf = make([]byte, DefaultBufferSize)
	}
	s.Reset(r)
	return s
}

// Reset re-initializes the scanner to read from r, keeping its buffer. The
// lexical state is reset to the initial state.
func (s *Scanner) Reset(r io.Reader) {
	s.r = r
	s.startRead, s.currentPos, s.markedPos, s.endRead = 0, 0, 0, 0
	s.base = 0
	s.readerEOF = false
	s.lexState = Initial
	s.atBOL = true
	s.char, s.line, s.column = 0, 0, 0
}

// ErrLexState is returned for ids which do not denote a lexical state.
var ErrLexState = errors.New("no such lexical state")

// Begin switches to lexical state id (2k, see Tables.LexStateID). Invalid ids
// are rejected and leave the lexical state unchanged.
func (s *Scanner) Begin(id int) error {
	if id < 0 || id%2 != 0 || id/2 >= len(s.t.lexStates) {
		return fmt.Errorf("%w: id %d", ErrLexState, id)
	}
	s.lexState = id
	return nil
}

// LexicalState returns the id of the current lexical state.
func (s *Scanner) LexicalState() int {
	return s.lexState
}

// Text returns the text of the most recent match.
func (s *Scanner) Text() string {
	return string(s.buf[s.startRead:s.markedPos])
}

// Line returns the line of the most recent match, starting at 0.
func (s *Scanner) Line() int {
	return s.line
}

// Column returns the column of the most recent match, starting at 0.
func (s *Scanner) Column() int {
	return s.column
}

// Char returns the number of codepoints preceding the most recent match.
func (s *Scanner) Char() int64 {
	return s.char
}

// Offset returns the byte offset of the most recent match.
func (s *Scanner) Offset() uint64 {
	return uint64(s.base) + uint64(s.startRead)
}

// AtEOF is a predicate: has the scanner reached the end of the input?
func (s *Scanner) AtEOF() bool {
	return s.readerEOF && s.markedPos >= s.endRead
}

// PushBack returns the last n codepoints of the most recent match to the
// input. They will be read again by the next call to Next. n must not exceed
// the length of the match.
func (s *Scanner) PushBack(n int) {
	for ; n > 0 && s.markedPos > s.startRead; n-- {
		_, size := utf8.DecodeLastRune(s.buf[s.startRead:s.markedPos])
		s.markedPos -= size
	}
	if n > 0 {
		panic("scanner: push back exceeds length of match")
	}
}

// Next scans the next token. At the end of the input, Next dispatches the
// end-of-file action of the current lexical state, or the default end-of-file
// action, or returns io.EOF.
//
// If the entry state of the current lexical state is final, a rule matches
// the empty string. Where no other rule applies, Next then returns a
// zero-length match without consuming input, and does so again on every
// call. Callers should switch lexical states or stop scanning on such
// matches. automaton.Automaton.EmptyMatchEntries lists the affected states.
func (s *Scanner) Next() (Match, error) {
	if err := s.advance(); err != nil {
		return Match{}, err
	}
	m := Match{Line: s.line, Column: s.column}
	action := -1
	state := int(s.t.lexstate[s.lexState])
	if s.atBOL {
		state = int(s.t.lexstate[s.lexState+1])
	}
	if s.t.isFinal(state) { // empty match
		action = state
	}
	atEOF := false
	for {
		if s.currentPos < s.endRead && (s.readerEOF || utf8.FullRune(s.buf[s.currentPos:s.endRead])) {
			r, size := utf8.DecodeRune(s.buf[s.currentPos:s.endRead])
			s.currentPos += size
			next := s.t.next(state, r)
			if next == NoTarget {
				break
			}
			state = next
			if s.t.isFinal(state) {
				action = state
				s.markedPos = s.currentPos
				if s.t.isDeadEnd(state) {
					break
				}
			}
			continue
		}
		if s.readerEOF {
			atEOF = true
			break
		}
		if err := s.refill(); err != nil {
			s.currentPos, s.markedPos = s.startRead, s.startRead
			return Match{}, err
		}
	}
	if atEOF && s.startRead == s.currentPos {
		return s.endOfFile(m)
	}
	label := 0
	if action >= 0 {
		label = int(s.t.action[action])
	}
	if label == 0 {
		return m, s.noMatch()
	}
	entry := s.t.actions[label-1]
	s.lookahead(entry)
	m.Label, m.Payload = label, entry.Payload
	m.Text = string(s.buf[s.startRead:s.markedPos])
	m.Span = lexgen.Span{s.Offset(), uint64(s.base) + uint64(s.markedPos)}
	tracer().Debugf("match %d %q at %d:%d", label, m.Text, m.Line, m.Column)
	return m, nil
}

// lookahead moves the end of the match for rules with trailing context.
func (s *Scanner) lookahead(entry tables.ActionEntry) {
	switch entry.Kind {
	case automaton.LookFixedBase:
		pos := s.startRead
		for i := 0; i < entry.LookLength; i++ {
			_, size := utf8.DecodeRune(s.buf[pos:s.markedPos])
			pos += size
		}
		s.markedPos = pos
	case automaton.LookFixedLook, automaton.LookFiniteChoice:
		for i := 0; i < entry.LookLength; i++ {
			_, size := utf8.DecodeLastRune(s.buf[s.startRead:s.markedPos])
			s.markedPos -= size
		}
	case automaton.LookGeneral:
		s.markedPos, s.fin = GeneralLookahead(s.t, entry.Entry, s.buf, s.startRead, s.markedPos, s.fin)
	}
}

// noMatch consumes the offending codepoint and reports it.
func (s *Scanner) noMatch() error {
	r, size := utf8.DecodeRune(s.buf[s.startRead:s.endRead])
	s.markedPos = s.startRead + size
	s.currentPos = s.markedPos
	err := &ScanError{
		Kind:   NoMatch,
		Offset: s.Offset(),
		Line:   s.line,
		Column: s.column,
		Rune:   r,
	}
	tracer().Debugf("%v", err)
	return err
}

func (s *Scanner) endOfFile(m Match) (Match, error) {
	m.EOF = true
	m.Span = lexgen.Span{s.Offset(), s.Offset()}
	label := s.t.eof[s.lexState/2]
	if label == 0 {
		label = s.t.defaultEOF
	}
	if label == 0 {
		return m, io.EOF
	}
	m.Label, m.Payload = label, s.t.actions[label-1].Payload
	return m, nil
}

// advance accounts for the most recent match: codepoints, lines, columns and
// the BOL flag. Cursors are committed only if peeking beyond the match
// succeeds, such that advance may be retried after an I/O error.
func (s *Scanner) advance() error {
	if s.markedPos == s.startRead {
		s.currentPos = s.startRead
		return nil
	}
	char, line, column := s.char, s.line, s.column
	cr := false
	text := s.buf[s.startRead:s.markedPos]
	var last rune
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		text = text[size:]
		char++
		last = r
		switch r {
		case '\u000B', '\u000C', '\u0085', '\u2028', '\u2029':
			line++
			column = 0
			cr = false
		case '\r':
			line++
			column = 0
			cr = true
		case '\n':
			if cr {
				cr = false
			} else {
				line++
				column = 0
			}
		default:
			cr = false
			column++
		}
	}
	bol := false
	switch last {
	case '\n', '\u000B', '\u000C', '\u0085', '\u2028', '\u2029':
		bol = true
	case '\r':
		lf, err := s.peekLF()
		if err != nil {
			return err
		}
		bol = !lf
		if cr && lf { // the \n will be counted with the next match
			line--
		}
	}
	s.char, s.line, s.column, s.atBOL = char, line, column, bol
	s.startRead = s.markedPos
	s.currentPos = s.markedPos
	return nil
}

// peekLF checks if the byte following the most recent match is '\n',
// refilling the buffer if necessary.
func (s *Scanner) peekLF() (bool, error) {
	for s.markedPos >= s.endRead {
		if s.readerEOF {
			return false, nil
		}
		if err := s.refill(); err != nil {
			return false, err
		}
	}
	return s.buf[s.markedPos] == '\n', nil
}

// maxEmptyReads is the number of times refill calls a reader returning
// neither data nor an error before giving up.
const maxEmptyReads = 100

// refill reads more input into the buffer. Bytes before startRead are
// discarded; if the buffer is full, it is doubled.
func (s *Scanner) refill() error {
	if s.startRead > 0 {
		copy(s.buf, s.buf[s.startRead:s.endRead])
		s.endRead -= s.startRead
		s.currentPos -= s.startRead
		s.markedPos -= s.startRead
		s.base += int64(s.startRead)
		s.startRead = 0
	}
	if s.endRead >= len(s.buf) {
		buf := make([]byte, 2*len(s.buf))
		copy(buf, s.buf[:s.endRead])
		s.buf = buf
		tracer().Debugf("scanner buffer grown to %d bytes", len(s.buf))
	}
	for i := 0; i < maxEmptyReads; i++ {
		n, err := s.r.Read(s.buf[s.endRead:])
		s.endRead += n
		if errors.Is(err, io.EOF) {
			s.readerEOF = true
			return nil
		}
		if err != nil {
			return &ScanError{Kind: IO, Offset: uint64(s.base) + uint64(s.endRead),
				Line: s.line, Column: s.column, Cause: err}
		}
		if n > 0 {
			return nil
		}
	}
	return &ScanError{Kind: IO, Offset: uint64(s.base) + uint64(s.endRead),
		Line: s.line, Column: s.column, Cause: io.ErrNoProgress}
}
