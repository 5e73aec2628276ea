package settings

import "fmt"

// Result is the outcome of validating one raw input: either Ok(value) or Invalid(reason).
type Result[T any] struct {
	value T
	err   *ValidationError
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Invalid[T any](raw, allowed string) Result[T] {
	return Result[T]{err: &ValidationError{Value: raw, Allowed: allowed}}
}

func (r Result[T]) OK() bool {
	return r.err == nil
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() *ValidationError {
	return r.err
}

// ValidationError rejects a pending edit. It names the field, the offending input
// and the allowed range or set.
type ValidationError struct {
	Field   FieldID
	Label   string
	Value   string
	Allowed string
}

func (e *ValidationError) Error() string {
	label := e.Label
	if label == "" {
		label = string(e.Field)
	}

	return fmt.Sprintf("%s must be %s (got %q)", label, e.Allowed, e.Value)
}

// PersistenceError reports a failed save. Pending edits are kept for retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save settings: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
