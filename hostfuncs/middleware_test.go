package hostfuncs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	rlog "github.com/resq-ai/resq-core/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		handler ByteHandler
		name    string
		want    string
		fatal   bool
	}{
		{
			name: "panic becomes fatal internal error",
			handler: func(context.Context, []byte) ([]byte, error) {
				panic("nil marker set")
			},
			fatal: true,
		},
		{
			name:    "normal response passes through",
			handler: staticHandler(`{"applied":true}`),
			want:    `{"applied":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := PanicRecoveryMiddleware()(tt.handler)(context.Background(), nil)
			require.NoError(t, err)

			if tt.want != "" {
				assert.JSONEq(t, tt.want, string(resp))
				return
			}
			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(resp, &errResp))
			assert.Equal(t, ErrCodeInternal, errResp.Error)
			assert.Equal(t, 500, errResp.Code)
			assert.Equal(t, tt.fatal, errResp.Fatal)
			assert.Equal(t, "panic: nil marker set", errResp.Message)
		})
	}
}

func TestMiddleware_OnionOrder(t *testing.T) {
	var calls []string
	trace := func(label string) Middleware {
		return func(next ByteHandler) ByteHandler {
			return func(ctx context.Context, payload []byte) ([]byte, error) {
				calls = append(calls, label+">")
				resp, err := next(ctx, payload)
				calls = append(calls, "<"+label)
				return resp, err
			}
		}
	}

	reg, err := NewRegistry(
		WithMiddleware(trace("recover"), trace("log")),
		WithMiddleware(trace("auth")),
		WithByteHandler(HandlerInvoke, func(context.Context, []byte) ([]byte, error) {
			calls = append(calls, HandlerInvoke)
			return nil, nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), HandlerInvoke, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"recover>", "log>", "auth>", HandlerInvoke, "<auth", "<log", "<recover"}, calls)
}

func TestMiddleware_WrapsEveryHandler(t *testing.T) {
	seen := map[string]int{}
	count := func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			seen[ctx.(HostContext).FunctionName()]++
			return next(ctx, payload)
		}
	}

	reg, err := NewRegistry(
		WithMiddleware(count),
		WithByteHandler(HandlerCatalog, staticHandler(`{}`)),
		WithByteHandler(HandlerSnapshot, staticHandler(`{}`)),
	)
	require.NoError(t, err)

	for _, name := range []string{HandlerCatalog, HandlerSnapshot, HandlerSnapshot, "teleport"} {
		_, err := reg.Invoke(context.Background(), name, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{HandlerCatalog: 1, HandlerSnapshot: 2}, seen)
}

func TestLoggingMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := rlog.New(&logs, rlog.WithLevel(slog.LevelDebug))

	reg, err := NewRegistry(
		WithMiddleware(LoggingMiddleware(logger)),
		WithByteHandler(HandlerSnapshot, staticHandler(`{"thread_id":"t-1"}`)),
		WithByteHandler(HandlerInvoke, staticHandler(string(NewValidationError("bad args").ToJSON()))),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), HandlerSnapshot, nil)
	require.NoError(t, err)
	_, err = reg.Invoke(context.Background(), HandlerInvoke, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=DEBUG")
	assert.Contains(t, lines[0], "handler=snapshot")
	assert.Contains(t, lines[0], "request_id=")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "handler=invoke")
	assert.Contains(t, lines[1], ErrCodeValidation)
}
