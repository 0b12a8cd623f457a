package llm

import (
	"context"
	"time"

	"github.com/vibecaas/nanoswarm/types"
)

// ChatRequest 一次聊天补全请求
type ChatRequest struct {
	TraceID     string             `json:"trace_id,omitempty"`
	Model       string             `json:"model"`
	Messages    []types.Message    `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	Stop        []string           `json:"stop,omitempty"`
	Tools       []types.ToolSchema `json:"tools,omitempty"`
	ToolChoice  string             `json:"tool_choice,omitempty"` // auto/none/<tool name>
	Timeout     time.Duration      `json:"timeout,omitempty"`
}

// ChatChoice 单个候选回复
type ChatChoice struct {
	Index        int           `json:"index"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Message      types.Message `json:"message"`
}

// ChatResponse 聊天补全响应
type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	Backend   string       `json:"backend,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     types.Usage  `json:"usage,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// First 返回首个候选消息；无候选时返回零值。
func (r *ChatResponse) First() types.Message {
	if len(r.Choices) == 0 {
		return types.Message{}
	}
	return r.Choices[0].Message
}

// HealthStatus 后端健康检查结果
type HealthStatus struct {
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
}

// Provider 推理后端契约。实现必须遵守 req.Timeout（若设置）并且
// 在 ctx 取消时尽快返回。
type Provider interface {
	// Name 返回后端名称（如 "ollama"、"nvidia_nim"）。
	Name() string
	// Complete 执行一次非流式聊天补全。
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// HealthCheck 探测后端可用性。
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}
