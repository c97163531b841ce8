// Package errors provides the typed error taxonomy for capability dispatch
// and shared state. All error types support errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/resq-ai/resq-core/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

var (
	// ErrStaleThread is returned by thread-scoped store access once the
	// scope's thread is no longer the active one.
	ErrStaleThread = stdErrors.New("thread is no longer active")

	// ErrStaleResult is returned when an asynchronous invocation completes
	// after the thread it was issued for has been superseded.
	ErrStaleResult = stdErrors.New("result belongs to a superseded thread")

	// ErrStoreDisposed is returned by every mutation after Dispose.
	ErrStoreDisposed = stdErrors.New("state store disposed")

	// ErrHandleNotFound is returned when a render handle id is unknown or closed.
	ErrHandleNotFound = stdErrors.New("render handle not found")
)

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// Known error types are categorized; anything else is reported as internal.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	switch {
	case stdErrors.Is(err, ErrStaleThread), stdErrors.Is(err, ErrStaleResult):
		return &entities.ErrorDetail{Message: err.Error(), Type: entities.ErrorTypeState, Code: "stale_thread"}
	case stdErrors.Is(err, ErrHandleNotFound):
		return &entities.ErrorDetail{Message: err.Error(), Type: entities.ErrorTypeNotFound, Code: "handle", IsNotFound: true}
	case stdErrors.Is(err, ErrStoreDisposed):
		return &entities.ErrorDetail{Message: err.Error(), Type: entities.ErrorTypeState, Code: "disposed", Fatal: true}
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    entities.ErrorTypeInternal,
	}
}

// NotFoundError is returned when the agent names a capability that is not registered.
// It is non-fatal: the agent may retry with a valid name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("capability %q unavailable", e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *NotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:    e.Error(),
		Type:       entities.ErrorTypeNotFound,
		Code:       "capability",
		IsNotFound: true,
		Details:    map[string]any{"name": e.Name},
	}
}

// DuplicateNameError is a registration-time configuration bug.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("capability %q already registered", e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *DuplicateNameError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeConfig,
		Code:    "duplicate_name",
		Fatal:   true,
	}
}

// SchemaValidationError reports the first structural mismatch between a value
// and its schema. Field is a dotted path such as "markers[1].lat"; it is empty
// when the root value itself is wrong.
type SchemaValidationError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *SchemaValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid field '%s': expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("invalid value: expected %s, got %s", e.Expected, e.Actual)
}

// ToErrorDetail implements DetailedError.
func (e *SchemaValidationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeValidation,
		Code:    "schema",
		Details: map[string]any{
			"field":    e.Field,
			"expected": e.Expected,
			"actual":   e.Actual,
		},
	}
}

// OutputSchemaError signals that a tool returned a value violating its own
// output schema. It is an internal bug, never a user error, and is not retried.
type OutputSchemaError struct {
	Err  error
	Tool string
}

func (e *OutputSchemaError) Error() string {
	return fmt.Sprintf("tool %q violated its output schema: %v", e.Tool, e.Err)
}

func (e *OutputSchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *OutputSchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeInternal,
		Code:    "output_schema",
		Fatal:   true,
		Wrapped: ToErrorDetail(e.Err),
	}
}

// InvocationError wraps a failure returned by a tool function or a component
// constructor. Tools may fail for reasons outside the schema contract, such as
// an unreachable data source.
type InvocationError struct {
	Err        error
	Capability string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("capability %q failed: %v", e.Capability, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *InvocationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeInternal,
		Code:    "invocation",
		Wrapped: ToErrorDetail(e.Err),
	}
}

// PanicError carries a panic recovered from a tool or component so that it
// never crosses the dispatch boundary.
type PanicError struct {
	Value      any
	Capability string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("capability %q panicked: %v", e.Capability, e.Value)
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypePanic, Code: "panic", Fatal: true}
}

// ThreadResetError means the store could not be cleared for a new thread.
// A stale cross-thread read is a correctness violation, so the thread's
// session state is unusable until a later transition succeeds.
type ThreadResetError struct {
	Err      error
	ThreadID string
}

func (e *ThreadResetError) Error() string {
	return fmt.Sprintf("failed to reset state for thread %q: %v", e.ThreadID, e.Err)
}

func (e *ThreadResetError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ThreadResetError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorTypeState,
		Code:    "thread_reset",
		Fatal:   true,
		Details: map[string]any{"thread_id": e.ThreadID},
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeConfig, Code: e.Field}
}
