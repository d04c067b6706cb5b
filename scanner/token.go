package scanner

import (
	"github.com/npillmayer/lexgen"
)

// EOF is the token type of the end-of-input token.
const EOF lexgen.TokType = -1

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() lexgen.Token
	SetErrorHandler(func(error))
}

// DefaultToken is a very unsophisticated token type, produced by the
// pre-defined actions of a Lexer.
type DefaultToken struct {
	kind   lexgen.TokType
	lexeme string
	Val    interface{}
	span   lexgen.Span
}

// MakeDefaultToken creates a token without a value.
func MakeDefaultToken(typ lexgen.TokType, lexeme string, span lexgen.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

func (t DefaultToken) TokType() lexgen.TokType {
	return t.kind
}

func (t DefaultToken) Value() interface{} {
	return t.Val
}

func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

func (t DefaultToken) Span() lexgen.Span {
	return t.span
}
