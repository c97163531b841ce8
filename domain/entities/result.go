package entities

import (
	"time"
)

// ResultStatus represents the outcome status of a capability invocation.
type ResultStatus string

const (
	// ResultStatusSuccess indicates the capability ran and produced output or a render handle.
	ResultStatusSuccess ResultStatus = "success"

	// ResultStatusError indicates the invocation was rejected or failed.
	ResultStatusError ResultStatus = "error"
)

// InvocationResult is the transport-facing envelope of one capability invocation.
// Exactly one of Output, HandleID or Error is meaningful, depending on Kind and Status.
type InvocationResult struct {
	// Timestamp is when this result was created.
	Timestamp time.Time `json:"timestamp"`

	// Output is the tool's return value. Nil for components.
	Output any `json:"output,omitempty"`

	// Error contains structured error information if Status is Error.
	Error *ErrorDetail `json:"error,omitempty"`

	// Status indicates whether the invocation succeeded.
	Status ResultStatus `json:"status"`

	// Capability is the name the agent asked for.
	Capability string `json:"capability"`

	// Kind is set once the capability has been resolved.
	Kind CapabilityKind `json:"kind,omitempty"`

	// ThreadID is the thread the invocation was bound to.
	ThreadID string `json:"thread_id,omitempty"`

	// HandleID identifies the mounted component instance.
	HandleID string `json:"handle_id,omitempty"`
}

// ResultError creates an error InvocationResult for the named capability.
func ResultError(capability string, err *ErrorDetail) InvocationResult {
	return InvocationResult{
		Timestamp:  time.Now().UTC(),
		Status:     ResultStatusError,
		Capability: capability,
		Error:      err,
	}
}

// IsSuccess returns true if the result indicates success.
func (r InvocationResult) IsSuccess() bool {
	return r.Status == ResultStatusSuccess
}

// IsError returns true if the result indicates an error.
func (r InvocationResult) IsError() bool {
	return r.Status == ResultStatusError
}
