package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
)

// HostFunc is a typed handler: it accepts a decoded request and returns a
// response or an error.
type HostFunc[Req any, Resp any] func(context.Context, Req) (Resp, error)

// ByteHandler is a function that accepts raw bytes (JSON) and returns raw bytes (JSON).
// It is the common shape every registered handler is reduced to.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed HostFunc into a ByteHandler.
//
// A payload that does not decode into Req yields a VALIDATION_ERROR response.
// An error returned by fn is converted with FromError. The returned Go error
// is reserved for failures to encode the response.
//
// Usage:
//
//	invoke := hostfuncs.NewJSONHandler(func(ctx context.Context, req hostfuncs.InvokeRequest) (hostfuncs.InvokeResponse, error) {
//	    return session.Invoke(ctx, req)
//	})
//	respBytes, err := invoke(ctx, []byte(`{"capability":"DisasterMap","args":{"center":[12.97,77.59]}}`))
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return NewValidationError(fmt.Sprintf("malformed request: %v", err)).ToJSON(), nil
			}
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return FromError(err).ToJSON(), nil
		}

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}
