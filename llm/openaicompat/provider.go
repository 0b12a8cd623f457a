// Package openaicompat implements llm.Provider against any backend speaking
// the OpenAI-compatible chat-completion HTTP contract. Ollama Cloud and
// NVIDIA NIM are the two deployment targets.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/types"
)

// Config configures one OpenAI-compatible backend.
type Config struct {
	// Name identifies the backend in results and logs (e.g. "ollama").
	Name string `yaml:"name" json:"name"`
	// BaseURL is the API root, e.g. "https://ollama.com/v1".
	BaseURL string `yaml:"base_url" json:"base_url"`
	// APIKey is sent as a Bearer token.
	APIKey string `yaml:"api_key" json:"api_key"`
	// Model is the default model when the request does not set one.
	Model string `yaml:"model" json:"model"`
	// Timeout bounds the HTTP round trip.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// PriceInput / PriceCompletion are USD per 1K tokens, for cost accounting.
	PriceInput      float64 `yaml:"price_input" json:"price_input"`
	PriceCompletion float64 `yaml:"price_completion" json:"price_completion"`
}

// OllamaConfig returns the primary-backend defaults of the original service.
func OllamaConfig(apiKey string) Config {
	return Config{
		Name:    "ollama",
		BaseURL: "https://ollama.com/v1",
		APIKey:  apiKey,
		Model:   "ministral-3:8b",
		Timeout: 120 * time.Second,
	}
}

// NIMConfig returns the fallback-backend defaults of the original service.
func NIMConfig(apiKey string) Config {
	return Config{
		Name:    "nvidia_nim",
		BaseURL: "https://integrate.api.nvidia.com/v1",
		APIKey:  apiKey,
		Model:   "meta/llama-3.3-70b-instruct",
		Timeout: 120 * time.Second,
	}
}

// Provider is the HTTP client for one backend.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a provider instance.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("backend", cfg.Name)),
	}
}

func (p *Provider) Name() string { return p.cfg.Name }

// OpenAI-compatible wire types
type oaMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content,omitempty"`
	Name       string       `json:"name,omitempty"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type oaToolCall struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Function oaFunction `json:"function"`
}

type oaFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	// Parameters is only used in tool schemas, never in calls.
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Description string          `json:"description,omitempty"`
}

type oaTool struct {
	Type     string     `json:"type"`
	Function oaFunction `json:"function"`
}

type oaRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Tools       []oaTool    `json:"tools,omitempty"`
	ToolChoice  any         `json:"tool_choice,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float32     `json:"temperature,omitempty"`
	Stop        []string    `json:"stop,omitempty"`
	Stream      bool        `json:"stream"`
}

type oaChoice struct {
	Index        int       `json:"index"`
	FinishReason string    `json:"finish_reason"`
	Message      oaMessage `json:"message"`
}

type oaUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type oaResponse struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Choices []oaChoice `json:"choices"`
	Usage   *oaUsage   `json:"usage,omitempty"`
	Created int64      `json:"created,omitempty"`
}

type oaErrorResp struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(p.toWire(req))
	if err != nil {
		return nil, types.NewError(types.ErrMalformedResponse, "marshal request").WithCause(err).WithBackend(p.cfg.Name)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrBackendUnavailable, "build request").WithCause(err).WithBackend(p.cfg.Name)
	}
	p.buildHeaders(httpReq)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, types.NewError(types.ErrTimeout, "backend call timed out").WithCause(err).WithBackend(p.cfg.Name)
		}
		return nil, types.NewError(types.ErrBackendUnavailable, "backend call failed").
			WithCause(err).WithBackend(p.cfg.Name).WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.mapHTTPError(resp)
	}

	var wire oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, types.NewError(types.ErrMalformedResponse, "decode response").WithCause(err).WithBackend(p.cfg.Name)
	}
	if len(wire.Choices) == 0 {
		return nil, types.NewError(types.ErrMalformedResponse, "response has no choices").WithBackend(p.cfg.Name)
	}

	out := p.fromWire(&wire)
	p.logger.Debug("completion finished",
		zap.String("model", out.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}

// HealthCheck probes GET /models.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("%s health check failed: status=%d", p.cfg.Name, resp.StatusCode)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
}

func (p *Provider) toWire(req *llm.ChatRequest) *oaRequest {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	wire := &oaRequest{
		Model:       model,
		Messages:    make([]oaMessage, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	for _, m := range req.Messages {
		om := oaMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, oaToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: oaFunction{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		wire.Messages = append(wire.Messages, om)
	}
	for _, t := range req.Tools {
		wire.Tools = append(wire.Tools, oaTool{
			Type: "function",
			Function: oaFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if req.ToolChoice != "" && len(wire.Tools) > 0 {
		wire.ToolChoice = req.ToolChoice
	}
	return wire
}

func (p *Provider) fromWire(wire *oaResponse) *llm.ChatResponse {
	out := &llm.ChatResponse{
		ID:      wire.ID,
		Backend: p.cfg.Name,
		Model:   wire.Model,
	}
	if wire.Created > 0 {
		out.CreatedAt = time.Unix(wire.Created, 0)
	}
	for _, c := range wire.Choices {
		msg := types.Message{
			Role:    types.Role(c.Message.Role),
			Content: c.Message.Content,
		}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		out.Choices = append(out.Choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message:      msg,
		})
	}
	if wire.Usage != nil {
		out.Usage = types.Usage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
			Cost: float64(wire.Usage.PromptTokens)/1000*p.cfg.PriceInput +
				float64(wire.Usage.CompletionTokens)/1000*p.cfg.PriceCompletion,
		}
	}
	return out
}

func (p *Provider) mapHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var parsed oaErrorResp
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	code := types.ErrBackendUnavailable
	retryable := false
	switch {
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		code = types.ErrTimeout
		retryable = true
	case resp.StatusCode == http.StatusTooManyRequests:
		retryable = true
	case resp.StatusCode >= 500:
		retryable = true
	case resp.StatusCode == http.StatusBadRequest:
		code = types.ErrInvalidRequest
	}

	return types.NewError(code, msg).
		WithHTTPStatus(resp.StatusCode).
		WithRetryable(retryable).
		WithBackend(p.cfg.Name)
}
