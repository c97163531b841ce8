package hostfuncs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every handler invocation with its request id,
// duration and, for ErrorResponse payloads, the error identifier.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			attrs := []any{}
			if hc, ok := ctx.(HostContext); ok {
				attrs = append(attrs, "handler", hc.FunctionName(), "request_id", hc.RequestID())
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			attrs = append(attrs, "duration", time.Since(start))

			switch {
			case err != nil:
				logger.ErrorContext(ctx, "handler failed", append(attrs, "error", err)...)
			case isErrorResponse(resp):
				logger.WarnContext(ctx, "handler returned error response", append(attrs, "response", string(resp))...)
			default:
				logger.DebugContext(ctx, "handler completed", attrs...)
			}
			return resp, err
		}
	}
}

func isErrorResponse(resp []byte) bool {
	var envelope struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if json.Unmarshal(resp, &envelope) != nil {
		return false
	}
	return envelope.Error != "" && envelope.Code != 0
}
