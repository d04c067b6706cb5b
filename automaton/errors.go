package automaton

import "fmt"

// ErrorKind classifies configuration errors.
type ErrorKind uint8

const (
	// EmptyRuleSet: the rules produce no automaton states
	EmptyRuleSet ErrorKind = iota
	// UnknownState: a rule refers to an undeclared lexical state
	UnknownState
	// DuplicateState: a lexical state is declared twice
	DuplicateState
	// UnsupportedRange: a codepoint set exceeds the alphabet
	UnsupportedRange
	// BadPattern: a pattern is malformed
	BadPattern
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyRuleSet:
		return "EmptyRuleSet"
	case UnknownState:
		return "UnknownState"
	case DuplicateState:
		return "DuplicateState"
	case UnsupportedRange:
		return "UnsupportedRange"
	case BadPattern:
		return "BadPattern"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// ConfigError is reported for rule sets from which no automaton
// can be built. Configuration errors are detected before any table is built.
type ConfigError struct {
	Kind    ErrorKind
	Message string
	Cause   error // optional underlying error
}

// Sentinel errors, one per kind. errors.Is matches any ConfigError of the same
// kind.
var (
	ErrEmptyRuleSet     = &ConfigError{Kind: EmptyRuleSet, Message: "empty rule set"}
	ErrUnknownState     = &ConfigError{Kind: UnknownState, Message: "unknown lexical state"}
	ErrDuplicateState   = &ConfigError{Kind: DuplicateState, Message: "duplicate lexical state"}
	ErrUnsupportedRange = &ConfigError{Kind: UnsupportedRange, Message: "unsupported character range"}
	ErrBadPattern       = &ConfigError{Kind: BadPattern, Message: "malformed pattern"}
)

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is matches configuration errors by kind.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Kind == e.Kind
}

func configError(kind ErrorKind, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
