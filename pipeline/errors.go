package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("input has no header row")
	ErrMissingColumn     = errors.New("column not found in input header")
	ErrRaggedRow         = errors.New("row has more fields than the header")
	ErrNotNumeric        = errors.New("value is not numeric")
	ErrSplitArity        = errors.New("split did not yield exactly two parts")
	ErrUnknownBoolean    = errors.New("value is not TRUE or FALSE")
	ErrMissingCoordinate = errors.New("geometry coordinate is missing")
	ErrIncompleteRecord  = errors.New("record does not supply every schema field")
	ErrInvalidDefinition = errors.New("invalid dataset definition")
)

// InputError reports an unreadable or malformed source.
type InputError struct {
	Source string
	Line   int
	Err    error
}

func (e *InputError) Error() string {
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("input %s, line %d: %v", e.Source, e.Line, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("input line %d: %v", e.Line, e.Err)
	case e.Source != "":
		return fmt.Sprintf("input %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("input: %v", e.Err)
	}
}

func (e *InputError) Unwrap() error { return e.Err }

// FormatError reports a value that failed its declared transform.
type FormatError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d, column %q, value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// SinkError reports a connection, DDL, insert or commit failure from the
// store.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// NewSinkError wraps err as a SinkError unless it already is one.
func NewSinkError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return err
	}
	return &SinkError{Op: op, Err: err}
}
