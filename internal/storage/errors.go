package storage

import "fmt"

// ValidationError represents bad caller input. It is rejected immediately and
// never retried.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// NewValidationError creates a new validation error.
func NewValidationError(format string, args ...interface{}) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// QueryError represents a malformed filter combination.
type QueryError struct {
	msg string
}

func (e QueryError) Error() string {
	return e.msg
}

// NewQueryError creates a new query error.
func NewQueryError(format string, args ...interface{}) error {
	return QueryError{msg: fmt.Sprintf(format, args...)}
}

// ConnectionError indicates the engine was unreachable after the retry budget
// was exhausted. Callers may retry at a higher level.
type ConnectionError struct {
	Engine string
	Op     string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: connection failed: %v", e.Engine, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SchemaError indicates the engine rejected a data definition statement.
// Requires operator intervention; not retried.
type SchemaError struct {
	Engine string
	Op     string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s %s: schema failure: %v", e.Engine, e.Op, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
