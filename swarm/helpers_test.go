package swarm

import (
	"context"
	"sync"
	"time"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/types"
)

// scriptedProvider 按脚本应答的后端桩。delay 在脚本执行前生效，
// 期间响应 ctx 取消。
type scriptedProvider struct {
	mu      sync.Mutex
	script  func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error)
	delay   time.Duration
	delayFn func(req *llm.ChatRequest) time.Duration
	calls   int
	reqs    []*llm.ChatRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.reqs = append(p.reqs, req)
	delay := p.delay
	if p.delayFn != nil {
		delay = p.delayFn(req)
	}
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.script(call, req)
}

func (p *scriptedProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *scriptedProvider) requests() []*llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.ChatRequest, len(p.reqs))
	copy(out, p.reqs)
	return out
}

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model:   "test-model",
		Backend: "scripted",
		Choices: []llm.ChatChoice{{Message: types.Message{Role: types.RoleAssistant, Content: content}}},
	}
}

func toolCallResponse(calls ...types.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model:   "test-model",
		Backend: "scripted",
		Choices: []llm.ChatChoice{{Message: types.Message{Role: types.RoleAssistant, ToolCalls: calls}}},
	}
}

// alwaysText 所有调用都返回同一段文本。
func alwaysText(content string) *scriptedProvider {
	return &scriptedProvider{
		script: func(int, *llm.ChatRequest) (*llm.ChatResponse, error) {
			return textResponse(content), nil
		},
	}
}

func testTeam(name string, roles ...team.AgentRole) team.Team {
	return team.Team{
		Name:        name,
		Description: "test team",
		Mode:        team.ModeHierarchical,
		Roles:       roles,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

func testRole(name string, weight float64, tools ...string) team.AgentRole {
	return team.AgentRole{
		Name:         name,
		Instructions: "You are the " + name + " specialist.",
		Weight:       weight,
		Tools:        tools,
	}
}

func registryWith(t team.Team) *team.Registry {
	reg := team.NewRegistry(nil)
	if err := reg.Register(t); err != nil {
		panic(err)
	}
	return reg
}
