package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/types"
)

func TestDefaultConfigs(t *testing.T) {
	ollama := OllamaConfig("key-a")
	assert.Equal(t, "ollama", ollama.Name)
	assert.Equal(t, "https://ollama.com/v1", ollama.BaseURL)
	assert.Equal(t, "ministral-3:8b", ollama.Model)

	nim := NIMConfig("key-b")
	assert.Equal(t, "nvidia_nim", nim.Name)
	assert.Equal(t, "meta/llama-3.3-70b-instruct", nim.Model)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := New(Config{
		Name:            "test",
		BaseURL:         srv.URL,
		APIKey:          "secret",
		Model:           "test-model",
		Timeout:         5 * time.Second,
		PriceInput:      0.001,
		PriceCompletion: 0.002,
	}, zap.NewNop())
	return p, srv
}

func TestProvider_Complete(t *testing.T) {
	var gotAuth string
	var gotReq oaRequest

	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(oaResponse{
			ID:    "chatcmpl-1",
			Model: "test-model",
			Choices: []oaChoice{{
				FinishReason: "stop",
				Message:      oaMessage{Role: "assistant", Content: "hello"},
			}},
			Usage: &oaUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		})
	})

	resp, err := p.Complete(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{
			{Role: types.RoleSystem, Content: "you are a test"},
			{Role: types.RoleUser, Content: "hi"},
		},
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model) // 默认模型回填
	assert.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "hello", resp.First().Content)
	assert.Equal(t, "test", resp.Backend)
	assert.Equal(t, 150, resp.Usage.TotalTokens)
	// 100/1000*0.001 + 50/1000*0.002
	assert.InDelta(t, 0.0002, resp.Usage.Cost, 1e-9)
}

func TestProvider_Complete_ToolCalls(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req oaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "roi_calculator", req.Tools[0].Function.Name)

		json.NewEncoder(w).Encode(oaResponse{
			Model: "test-model",
			Choices: []oaChoice{{
				FinishReason: "tool_calls",
				Message: oaMessage{
					Role: "assistant",
					ToolCalls: []oaToolCall{{
						ID:   "call-1",
						Type: "function",
						Function: oaFunction{
							Name:      "roi_calculator",
							Arguments: json.RawMessage(`{"investment":100}`),
						},
					}},
				},
			}},
		})
	})

	resp, err := p.Complete(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: "compute roi"}},
		Tools: []types.ToolSchema{{
			Name:       "roi_calculator",
			Parameters: json.RawMessage(`{"type":"object"}`),
		}},
		ToolChoice: "auto",
	})
	require.NoError(t, err)

	msg := resp.First()
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "roi_calculator", msg.ToolCalls[0].Name)
	assert.JSONEq(t, `{"investment":100}`, string(msg.ToolCalls[0].Arguments))
}

func TestProvider_Complete_HTTPErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  types.ErrorCode
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, types.ErrBackendUnavailable, true},
		{"server error", http.StatusInternalServerError, types.ErrBackendUnavailable, true},
		{"gateway timeout", http.StatusGatewayTimeout, types.ErrTimeout, true},
		{"bad request", http.StatusBadRequest, types.ErrInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "upstream says no"},
				})
			})

			_, err := p.Complete(context.Background(), &llm.ChatRequest{
				Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}},
			})
			require.Error(t, err)

			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, tt.status, e.HTTPStatus)
			assert.Equal(t, "upstream says no", e.Message)
		})
	}
}

func TestProvider_Complete_EmptyChoices(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(oaResponse{Model: "test-model"})
	})

	_, err := p.Complete(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrMalformedResponse, types.GetErrorCode(err))
}

func TestProvider_HealthCheck(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	status, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Latency, time.Duration(0))
}
