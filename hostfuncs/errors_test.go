package hostfuncs

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_ToJSON(t *testing.T) {
	resp := NewValidationError("invalid JSON")
	assert.JSONEq(t, `{"error":"VALIDATION_ERROR","message":"invalid JSON","code":400}`, string(resp.ToJSON()))

	resp = NewNotFoundError("teleport")
	assert.JSONEq(t, `{"error":"NOT_FOUND","message":"unknown handler: teleport","code":404}`, string(resp.ToJSON()))
}

func TestNewPanicError(t *testing.T) {
	tests := []struct {
		value    any
		name     string
		expected string
	}{
		{name: "string", value: "boom", expected: "panic: boom"},
		{name: "error", value: stdErrors.New("kaput"), expected: "panic: kaput"},
		{name: "other", value: 42, expected: "panic: panic recovered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPanicError(tt.value)
			assert.Equal(t, ErrCodeInternal, resp.Error)
			assert.Equal(t, 500, resp.Code)
			assert.True(t, resp.Fatal)
			assert.Equal(t, tt.expected, resp.Message)
		})
	}
}

func TestFromError(t *testing.T) {
	invalid := &errors.SchemaValidationError{Field: "center[1]", Expected: "finite number", Actual: "NaN"}

	tests := []struct {
		err     error
		details map[string]any
		name    string
		code    string
		status  int
		fatal   bool
	}{
		{
			name:    "unknown capability",
			err:     &errors.NotFoundError{Name: "Teleport"},
			code:    ErrCodeNotFound,
			status:  404,
			details: map[string]any{"name": "Teleport"},
		},
		{
			name:    "schema validation",
			err:     fmt.Errorf("invoke: %w", invalid),
			code:    ErrCodeValidation,
			status:  400,
			details: map[string]any{"field": "center[1]", "expected": "finite number", "actual": "NaN"},
		},
		{
			name:   "output schema wins over wrapped validation",
			err:    &errors.OutputSchemaError{Tool: "incidentData", Err: invalid},
			code:   ErrCodeOutputSchema,
			status: 500,
			fatal:  true,
		},
		{
			name:    "thread reset",
			err:     &errors.ThreadResetError{ThreadID: "t-2", Err: errors.ErrStoreDisposed},
			code:    ErrCodeState,
			status:  500,
			fatal:   true,
			details: map[string]any{"thread_id": "t-2"},
		},
		{
			name:   "unknown handle",
			err:    fmt.Errorf("%q: %w", "h9", errors.ErrHandleNotFound),
			code:   ErrCodeNotFound,
			status: 404,
		},
		{
			name:   "stale thread",
			err:    fmt.Errorf("scope: %w", errors.ErrStaleThread),
			code:   ErrCodeStaleThread,
			status: 409,
		},
		{
			name:   "stale result",
			err:    errors.ErrStaleResult,
			code:   ErrCodeStaleThread,
			status: 409,
		},
		{
			name:   "panic",
			err:    &errors.PanicError{Capability: "DisasterMap", Value: "nil map"},
			code:   ErrCodeInternal,
			status: 500,
			fatal:  true,
		},
		{
			name:   "anything else",
			err:    stdErrors.New("disk on fire"),
			code:   ErrCodeInternal,
			status: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := FromError(tt.err)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.fatal, resp.Fatal)
			assert.NotEmpty(t, resp.Message)
			if tt.details != nil {
				assert.Equal(t, tt.details, resp.Details)
			}
		})
	}
}

func TestFromError_RoundTripsAsJSON(t *testing.T) {
	data := FromError(&errors.SchemaValidationError{Field: "zoom", Expected: "finite number", Actual: `"far"`}).ToJSON()
	require.NotNil(t, data)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "zoom", decoded.Details["field"])
}
