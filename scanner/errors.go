package scanner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scan errors.
type ErrorKind uint8

const (
	// NoMatch: no rule matches at the current position
	NoMatch ErrorKind = iota
	// IO: reading input failed
	IO
)

func (k ErrorKind) String() string {
	switch k {
	case NoMatch:
		return "NoMatch"
	case IO:
		return "IO"
	}
	return fmt.Sprintf("UnknownErrorKind(%d)", k)
}

// ScanError is returned by Scanner.Next.
//
// After a NoMatch error, the offending codepoint has been consumed and
// scanning may continue. After an IO error, the scanner's cursors are
// positioned at the start of the token which was interrupted; calling Next
// again retries reading.
type ScanError struct {
	Kind   ErrorKind
	Offset uint64 // byte offset in the input stream
	Line   int
	Column int
	Rune   rune  // offending codepoint (NoMatch)
	Cause  error // underlying error (IO)
}

func (e *ScanError) Error() string {
	switch e.Kind {
	case NoMatch:
		return fmt.Sprintf("no match for %q at line %d, column %d (offset %d)",
			e.Rune, e.Line+1, e.Column+1, e.Offset)
	case IO:
		return fmt.Sprintf("reading input at offset %d: %v", e.Offset, e.Cause)
	}
	return "scan error"
}

// Unwrap returns the underlying error, if any.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// IsNoMatch is a predicate.
func IsNoMatch(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Kind == NoMatch
}
