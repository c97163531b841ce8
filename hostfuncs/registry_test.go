package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticHandler(body string) ByteHandler {
	return func(context.Context, []byte) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name    string
		opts    []RegistryOption
		names   []string
		wantErr string
	}{
		{
			name:  "empty",
			names: []string{},
		},
		{
			name: "names are sorted",
			opts: []RegistryOption{
				WithByteHandler(HandlerView, staticHandler(`{}`)),
				WithByteHandler(HandlerCatalog, staticHandler(`{}`)),
				WithByteHandler(HandlerInvoke, staticHandler(`{}`)),
			},
			names: []string{HandlerCatalog, HandlerInvoke, HandlerView},
		},
		{
			name: "duplicate name",
			opts: []RegistryOption{
				WithByteHandler(HandlerSnapshot, staticHandler(`{}`)),
				WithByteHandler(HandlerSnapshot, staticHandler(`{}`)),
			},
			wantErr: "duplicate handler name",
		},
		{
			name:    "empty name",
			opts:    []RegistryOption{WithByteHandler("", staticHandler(`{}`))},
			wantErr: "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.opts...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.names, reg.Names())
			for _, name := range tt.names {
				assert.True(t, reg.Has(name))
			}
			assert.False(t, reg.Has("teleport"))
		})
	}
}

func TestHandlerRegistry_Invoke(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler(HandlerSnapshot, func(_ context.Context, payload []byte) ([]byte, error) {
			return append([]byte(`{"echo":`), append(payload, '}')...), nil
		}),
	)
	require.NoError(t, err)

	t.Run("registered handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), HandlerSnapshot, []byte(`"t-1"`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"echo":"t-1"}`, string(resp))
	})

	t.Run("unknown handler", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "teleport", nil)
		require.NoError(t, err)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(resp, &errResp))
		assert.Equal(t, ErrCodeNotFound, errResp.Error)
		assert.Equal(t, 404, errResp.Code)
		assert.Equal(t, "unknown handler: teleport", errResp.Message)
	})
}

func TestHandlerRegistry_Invoke_SetsHostContext(t *testing.T) {
	var name, requestID string
	reg, err := NewRegistry(
		WithByteHandler(HandlerAdjustSupply, func(ctx context.Context, _ []byte) ([]byte, error) {
			hc, ok := ctx.(HostContext)
			require.True(t, ok)
			name, requestID = hc.FunctionName(), hc.RequestID()
			return nil, nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), HandlerAdjustSupply, nil)
	require.NoError(t, err)
	assert.Equal(t, HandlerAdjustSupply, name)
	assert.NotEmpty(t, requestID)

	// A caller-supplied HostContext is reused, keeping its request id.
	outer := NewHostContext(context.Background(), HandlerAdjustSupply)
	_, err = reg.Invoke(outer, HandlerAdjustSupply, nil)
	require.NoError(t, err)
	assert.Equal(t, outer.RequestID(), requestID)
}

func TestHandlerRegistry_RequestSchema(t *testing.T) {
	reg, err := NewRegistry(
		WithHandler(HandlerView, func(_ context.Context, req ViewRequest) (ViewResponse, error) {
			return ViewResponse{HandleID: req.HandleID}, nil
		}),
		WithByteHandler(HandlerCatalog, staticHandler(`{}`)),
	)
	require.NoError(t, err)

	s, ok := reg.RequestSchema(HandlerView)
	require.True(t, ok)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(s, &decoded))
	assert.Contains(t, decoded["properties"], "handle_id")

	_, ok = reg.RequestSchema(HandlerCatalog)
	assert.False(t, ok)

	resp, err := reg.Invoke(context.Background(), HandlerView, []byte(`{"handle_id":"h1"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"handle_id":"h1","capability":"","thread_id":"","view":null}`, string(resp))
}
