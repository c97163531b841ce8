package hostfuncs

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"

	"github.com/resq-ai/resq-core/domain/errors"
)

// Error identifiers carried in ErrorResponse.Error.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeOutputSchema = "OUTPUT_SCHEMA_ERROR"
	ErrCodeStaleThread  = "STALE_THREAD"
	ErrCodeState        = "STATE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents a structured error returned as JSON to the transport.
// Agents use Details (field, expected, actual) to correct their arguments.
type ErrorResponse struct {
	// Details carries error specific context such as the failing field.
	Details map[string]any `json:"details,omitempty"`

	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR", "INTERNAL_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is an HTTP-style status code (e.g., 400, 500).
	Code int `json:"code"`

	// Fatal marks errors the agent must not retry.
	Fatal bool `json:"fatal,omitempty"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
// Returns nil if serialization fails.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// NewValidationError creates an error response for bad input (e.g., malformed JSON).
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   ErrCodeValidation,
		Message: message,
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError creates an error response for unknown handler names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{
		Error:   ErrCodeNotFound,
		Message: "unknown handler: " + name,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   ErrCodeInternal,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	resp := NewInternalError("panic: " + msg)
	resp.Fatal = true
	return resp
}

// FromError maps the domain error taxonomy onto an ErrorResponse.
func FromError(err error) ErrorResponse {
	var (
		notFound *errors.NotFoundError
		invalid  *errors.SchemaValidationError
		output   *errors.OutputSchemaError
		reset    *errors.ThreadResetError
		panicErr *errors.PanicError
	)

	// OutputSchemaError wraps a SchemaValidationError, so it is checked first.
	switch {
	case stdErrors.As(err, &output):
		return ErrorResponse{
			Error:   ErrCodeOutputSchema,
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
			Fatal:   true,
		}
	case stdErrors.As(err, &notFound):
		return ErrorResponse{
			Error:   ErrCodeNotFound,
			Message: err.Error(),
			Code:    http.StatusNotFound,
			Details: map[string]any{"name": notFound.Name},
		}
	case stdErrors.As(err, &invalid):
		return ErrorResponse{
			Error:   ErrCodeValidation,
			Message: err.Error(),
			Code:    http.StatusBadRequest,
			Details: map[string]any{
				"field":    invalid.Field,
				"expected": invalid.Expected,
				"actual":   invalid.Actual,
			},
		}
	case stdErrors.As(err, &reset):
		return ErrorResponse{
			Error:   ErrCodeState,
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
			Fatal:   true,
			Details: map[string]any{"thread_id": reset.ThreadID},
		}
	case stdErrors.Is(err, errors.ErrHandleNotFound):
		return ErrorResponse{
			Error:   ErrCodeNotFound,
			Message: err.Error(),
			Code:    http.StatusNotFound,
		}
	case stdErrors.Is(err, errors.ErrStaleThread), stdErrors.Is(err, errors.ErrStaleResult):
		return ErrorResponse{
			Error:   ErrCodeStaleThread,
			Message: err.Error(),
			Code:    http.StatusConflict,
		}
	case stdErrors.As(err, &panicErr):
		return NewPanicError(panicErr.Error())
	default:
		return NewInternalError(err.Error())
	}
}
