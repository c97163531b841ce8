package schema

import "github.com/resq-ai/resq-core/domain/errors"

// Result is the tagged outcome of validating a value: either Value holds the
// coerced value, or Err describes the first mismatch.
type Result struct {
	Value any
	Err   *errors.SchemaValidationError
}

// OK reports whether validation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns Err as an error, or nil on success.
// It avoids the typed-nil pitfall of returning r.Err directly.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Object returns the value as a map, for results of Object nodes.
func (r Result) Object() map[string]any {
	m, _ := r.Value.(map[string]any)
	return m
}

func success(v any) Result {
	return Result{Value: v}
}

func failure(path, expected, actual string) Result {
	return Result{Err: &errors.SchemaValidationError{Field: path, Expected: expected, Actual: actual}}
}
