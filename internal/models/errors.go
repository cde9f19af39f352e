package models

import "fmt"

// SchemaError reports a source that does not match the expected column schema:
// a missing column or a required value that is empty or non-numeric.
// Fatal at load time.
type SchemaError struct {
	Row     int
	Field   string
	Value   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema error at row %d, field %s (%q): %s", e.Row, e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("schema error, field %s: %s", e.Field, e.Message)
}

// IsTransient returns false as schema errors are permanent
func (e *SchemaError) IsTransient() bool {
	return false
}

// ParseError reports a date value that does not match its fixed layout
type ParseError struct {
	Row     int
	Field   string
	Value   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse error at row %d, field %s (%q): %s", e.Row, e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("parse error, field %s (%q): %s", e.Field, e.Value, e.Message)
}

// IsTransient returns false as parse errors are permanent
func (e *ParseError) IsTransient() bool {
	return false
}
