package lexgen

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. We do not define any constants here, as
// it is up to applications to define them.
type TokType int

// Tokens represent input tokens. They are produced by scanners created from
// generated tables and reflect terminals in a language.
//
// An example would be a token for an identifier:
//
//    TokType = Ident       // identifier for this kind of tokens (application specific)
//    Lexeme  = "zzState"   // lexeme how it appeared in the input stream
//    Value   = nil         // optional value, set by an action
//    Span    = 67…74       // occured from byte position 67 in the input stream
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of input. For every token the
// scanner tracks which input positions it covers. A span denotes a start
// position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the number of bytes covered by s.
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for the zero span, which marks "no input yet".
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the smallest span covering both s and other. The lexer
// uses it to join matches kept by the More action.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
