// MockProvider 的推理后端测试模拟实现。
//
// 支持固定响应、工具调用脚本与错误注入场景。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/types"
)

// --- MockProvider 结构 ---

// MockProvider 是 llm.Provider 的模拟实现
type MockProvider struct {
	mu sync.RWMutex

	// 响应配置
	name      string
	model     string
	response  string
	toolCalls []types.ToolCall
	err       error

	// Token 使用统计
	promptTokens     int
	completionTokens int

	// 调用记录
	calls          []MockProviderCall
	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// 行为控制
	delay     time.Duration // 模拟延迟
	failAfter int           // 在第 N 次调用后失败（0 不生效）
	callCount int
}

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// --- 构造函数和 Builder 方法 ---

// NewMockProvider 创建新的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:             "mock",
		model:            "mock-model",
		response:         "Mock response",
		calls:            []MockProviderCall{},
		promptTokens:     10,
		completionTokens: 20,
	}
}

// WithName 设置后端名称
func (m *MockProvider) WithName(name string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m
}

// WithResponse 设置固定响应内容
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithToolCalls 设置工具调用响应。设置后每次调用都返回工具调用，
// 需要终止循环的场景请改用 WithCompletionFunc。
func (m *MockProvider) WithToolCalls(calls ...types.ToolCall) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls = calls
	return m
}

// WithError 设置返回错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置模拟延迟
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFailAfter 设置在第 N 次调用后开始失败
func (m *MockProvider) WithFailAfter(n int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.err = err
	return m
}

// WithUsage 设置 token 统计
func (m *MockProvider) WithUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithCompletionFunc 完全接管 Complete 行为
func (m *MockProvider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionFunc = fn
	return m
}

// --- llm.Provider 实现 ---

func (m *MockProvider) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

func (m *MockProvider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	count := m.callCount
	delay := m.delay
	fn := m.completionFunc
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			m.record(req, nil, ctx.Err())
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fn != nil {
		resp, err := fn(ctx, req)
		m.record(req, resp, err)
		return resp, err
	}

	m.mu.RLock()
	err := m.err
	failAfter := m.failAfter
	m.mu.RUnlock()

	if err != nil && (failAfter == 0 || count > failAfter) {
		m.record(req, nil, err)
		return nil, err
	}

	resp := m.buildResponse()
	m.record(req, resp, nil)
	return resp, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil && m.failAfter == 0 {
		return nil, m.err
	}
	return &llm.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}

func (m *MockProvider) buildResponse() *llm.ChatResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg := types.Message{Role: types.RoleAssistant, Content: m.response}
	finish := "stop"
	if len(m.toolCalls) > 0 {
		msg = types.Message{Role: types.RoleAssistant, ToolCalls: m.toolCalls}
		finish = "tool_calls"
	}

	return &llm.ChatResponse{
		Backend: m.name,
		Model:   m.model,
		Choices: []llm.ChatChoice{{Index: 0, FinishReason: finish, Message: msg}},
		Usage: types.Usage{
			PromptTokens:     m.promptTokens,
			CompletionTokens: m.completionTokens,
			TotalTokens:      m.promptTokens + m.completionTokens,
		},
		CreatedAt: time.Now(),
	}
}

func (m *MockProvider) record(req *llm.ChatRequest, resp *llm.ChatResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
}

// --- 调用记录访问 ---

// Calls 返回全部调用记录的拷贝
func (m *MockProvider) Calls() []MockProviderCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回 Complete 被调用的次数
func (m *MockProvider) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount
}

// Reset 清空调用记录与计数
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = m.calls[:0]
	m.callCount = 0
}
