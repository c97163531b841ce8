package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONHandler(t *testing.T) {
	type echoRequest struct {
		Input string `json:"input"`
	}
	type echoResponse struct {
		Output string `json:"output"`
	}

	handler := NewJSONHandler(func(ctx context.Context, req echoRequest) (echoResponse, error) {
		if req.Input == "missing" {
			return echoResponse{}, &errors.NotFoundError{Name: req.Input}
		}
		return echoResponse{Output: "echo: " + req.Input}, nil
	})

	t.Run("success", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte(`{"input":"hello"}`))
		require.NoError(t, err)

		var resp echoResponse
		require.NoError(t, json.Unmarshal(respBytes, &resp))
		assert.Equal(t, "echo: hello", resp.Output)
	})

	t.Run("empty payload decodes to zero request", func(t *testing.T) {
		respBytes, err := handler(context.Background(), nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"output":"echo: "}`, string(respBytes))
	})

	t.Run("invalid JSON returns ErrorResponse", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte("{invalid-json"))
		require.NoError(t, err)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(respBytes, &errResp))
		assert.Equal(t, ErrCodeValidation, errResp.Error)
		assert.Equal(t, 400, errResp.Code)
		assert.Contains(t, errResp.Message, "malformed request")
	})

	t.Run("handler error is mapped", func(t *testing.T) {
		respBytes, err := handler(context.Background(), []byte(`{"input":"missing"}`))
		require.NoError(t, err)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(respBytes, &errResp))
		assert.Equal(t, ErrCodeNotFound, errResp.Error)
		assert.Equal(t, 404, errResp.Code)
		assert.Equal(t, "missing", errResp.Details["name"])
	})
}

func TestNewJSONHandler_UnencodableResponse(t *testing.T) {
	handler := NewJSONHandler(func(ctx context.Context, _ struct{}) (any, error) {
		return make(chan int), nil
	})

	_, err := handler(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal response")
}
