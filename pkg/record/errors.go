package record

import (
	"fmt"
	"strings"
)

// SchemaError reports required fields that are absent from the input.
// It is always fatal: no analysis runs on an input with a missing column.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing required field(s): %s", strings.Join(e.Missing, ", "))
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

// ParseError reports a single malformed value.
type ParseError struct {
	// Field is the logical field name (employee, clock_in, clock_out, duration).
	Field string

	// Value is the offending raw value.
	Value string

	Source  string
	LineNum int

	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s:%d: ", e.Source, e.LineNum)
	}
	fmt.Fprintf(&b, "invalid %s %q", e.Field, e.Value)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
