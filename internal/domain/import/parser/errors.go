package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode means no candidate encoding rendered the input as a table.
	ErrDecode = errors.New("cannot read file")
	// ErrSchema means the required column roles could not be resolved.
	ErrSchema = errors.New("unrecognized statement format")
)

// DecodeError reports the encodings that were tried and the last failure.
type DecodeError struct {
	Tried []string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := ErrDecode.Error()
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried %s)", strings.Join(e.Tried, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// SchemaError names the roles that no header could fill.
type SchemaError struct {
	Headers []string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing %s in headers %q", ErrSchema, strings.Join(e.Missing, ", "), e.Headers)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// RowSkip records why a data row produced no transaction.
type RowSkip struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Reason  string `json:"reason"`
	RawData string `json:"raw,omitempty"`
}

func (s RowSkip) String() string {
	if s.Column == "" {
		return fmt.Sprintf("line %d: %s", s.Line, s.Reason)
	}
	return fmt.Sprintf("line %d, column %s: %s", s.Line, s.Column, s.Reason)
}
