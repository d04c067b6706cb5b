package pack

import (
	"errors"
	"fmt"
)

// Sentinel errors, to be tested with errors.Is.
var (
	ErrValueRange = errors.New("value not representable")
	ErrCount      = errors.New("run count must be at least 1")
	ErrCorrupt    = errors.New("corrupt packed table")
)

// EncodingError is returned if a table cannot be encoded with a given scheme.
// It is an internal invariant violation of the table generator.
type EncodingError struct {
	Scheme Scheme
	Index  int // position in the source table, -1 if unknown
	Value  int
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s encoding, entry %d = %d: %v", e.Scheme, e.Index, e.Value, e.Err)
	}
	return fmt.Sprintf("%s encoding, value %d: %v", e.Scheme, e.Value, e.Err)
}

// Unwrap returns the sentinel error.
func (e *EncodingError) Unwrap() error {
	return e.Err
}
