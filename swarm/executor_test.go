package swarm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/types"
)

func echoRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry(nil)
	err := reg.Register(types.ToolSchema{
		Name:        "echo",
		Description: "echoes its input",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"v":{"type":"number"}}}`),
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in map[string]any
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		return in, nil
	})
	require.NoError(t, err)
	return reg
}

func subtaskFor(role string, tools ...string) SubTask {
	return SubTask{
		ID:        "st-1",
		Role:      testRole(role, 1.0, tools...),
		Objective: "Score the inbound leads",
		Context:   map[string]any{"segment": "mid-market"},
		Memory:    []string{"previous run summary"},
	}
}

func TestExecutor_SimpleCompletion(t *testing.T) {
	provider := &scriptedProvider{
		script: func(int, *llm.ChatRequest) (*llm.ChatResponse, error) {
			resp := textResponse("Lead analysis complete.")
			resp.Backend = "ollama"
			resp.Usage = types.Usage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42}
			return resp, nil
		},
	}
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultOK, result.Status)
	assert.True(t, result.OK())
	assert.Equal(t, "Lead analysis complete.", result.Output)
	assert.Equal(t, "ollama", result.Backend)
	assert.Equal(t, 42, result.Usage.TotalTokens)
	assert.Equal(t, "st-1", result.ID)
	assert.Equal(t, "analyst", result.Role)
}

func TestExecutor_PromptContainsContextAndMemory(t *testing.T) {
	provider := alwaysText("done")
	e := NewExecutor(provider, nil, nil)

	e.Execute(context.Background(), subtaskFor("analyst"))

	reqs := provider.requests()
	require.Len(t, reqs, 1)
	user := reqs[0].Messages[1].Content
	assert.Contains(t, user, "## Objective")
	assert.Contains(t, user, "Score the inbound leads")
	assert.Contains(t, user, "segment: mid-market")
	assert.Contains(t, user, "## Prior runs in this thread")
	assert.Contains(t, user, "previous run summary")
}

func TestExecutor_TokenEstimateWhenUsageMissing(t *testing.T) {
	provider := alwaysText("a fairly long completion that the estimator can count")
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultOK, result.Status)
	assert.Greater(t, result.Usage.TotalTokens, 0)
}

func TestExecutor_ToolRound(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if call == 1 {
				return toolCallResponse(types.ToolCall{
					ID: "c1", Name: "echo", Arguments: json.RawMessage(`{"v":7}`),
				}), nil
			}
			return textResponse("Final answer using v=7"), nil
		},
	}
	e := NewExecutor(provider, echoRegistry(t), nil)

	result := e.Execute(context.Background(), subtaskFor("analyst", "echo"))
	require.Equal(t, ResultOK, result.Status)
	assert.Equal(t, "Final answer using v=7", result.Output)
	require.Len(t, result.ToolTrace, 1)
	assert.Equal(t, "echo", result.ToolTrace[0].Name)
	assert.Equal(t, "c1", result.ToolTrace[0].CallID)
	assert.Empty(t, result.ToolTrace[0].Error)

	// 第二次请求必须带上工具结果消息
	reqs := provider.requests()
	require.Len(t, reqs, 2)
	last := reqs[1].Messages[len(reqs[1].Messages)-1]
	assert.Equal(t, types.RoleTool, last.Role)
	assert.Equal(t, "c1", last.ToolCallID)
	assert.Contains(t, last.Content, `"v":7`)
}

func TestExecutor_ToolNotPermitted(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if call == 1 {
				return toolCallResponse(types.ToolCall{
					ID: "c1", Name: "forbidden_tool", Arguments: json.RawMessage(`{}`),
				}), nil
			}
			return textResponse("recovered without the tool"), nil
		},
	}
	e := NewExecutor(provider, echoRegistry(t), nil)

	result := e.Execute(context.Background(), subtaskFor("analyst", "echo"))
	// 未许可调用折叠为痕迹，执行继续
	require.Equal(t, ResultOK, result.Status)
	require.Len(t, result.ToolTrace, 1)
	assert.Contains(t, result.ToolTrace[0].Error, string(types.ErrToolNotPermitted))
}

func TestExecutor_ToolExecutionErrorContinues(t *testing.T) {
	reg := tool.NewRegistry(nil)
	require.NoError(t, reg.Register(types.ToolSchema{
		Name:       "boomer",
		Parameters: json.RawMessage(`{"type":"object"}`),
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	}))

	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if call == 1 {
				return toolCallResponse(types.ToolCall{
					ID: "c1", Name: "boomer", Arguments: json.RawMessage(`{}`),
				}), nil
			}
			return textResponse("worked around the failure"), nil
		},
	}
	e := NewExecutor(provider, reg, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst", "boomer"))
	require.Equal(t, ResultOK, result.Status)
	require.Len(t, result.ToolTrace, 1)
	assert.Contains(t, result.ToolTrace[0].Error, "boom")
}

func TestExecutor_ToolRoundsExhausted(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			// 只要还允许用工具就一直调用
			if len(req.Tools) > 0 {
				return toolCallResponse(types.ToolCall{
					ID: "c", Name: "echo", Arguments: json.RawMessage(`{"v":1}`),
				}), nil
			}
			return textResponse("forced final answer"), nil
		},
	}
	e := NewExecutor(provider, echoRegistry(t), nil).WithToolRounds(2)

	result := e.Execute(context.Background(), subtaskFor("analyst", "echo"))
	require.Equal(t, ResultOK, result.Status)
	assert.Equal(t, "forced final answer", result.Output)
	assert.Len(t, result.ToolTrace, 2)
	assert.Equal(t, 3, provider.callCount())
}

func TestExecutor_MalformedRetriesOnce(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if call == 1 {
				return nil, types.NewError(types.ErrMalformedResponse, "bad json from backend")
			}
			return textResponse("recovered"), nil
		},
	}
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultOK, result.Status)
	assert.Equal(t, 2, provider.callCount())
}

func TestExecutor_MalformedTwiceFails(t *testing.T) {
	provider := &scriptedProvider{
		script: func(int, *llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, types.NewError(types.ErrMalformedResponse, "bad json from backend")
		},
	}
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultFailed, result.Status)
	assert.Equal(t, string(types.ErrMalformedResponse), result.ErrorKind)
	assert.Equal(t, 2, provider.callCount())
}

func TestExecutor_EmptyContentRetriesOnce(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if call == 1 {
				return textResponse("   "), nil
			}
			return textResponse("non-empty now"), nil
		},
	}
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultOK, result.Status)
	assert.Equal(t, "non-empty now", result.Output)
}

func TestExecutor_BackendUnavailable(t *testing.T) {
	provider := &scriptedProvider{
		script: func(int, *llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := NewExecutor(provider, nil, nil)

	result := e.Execute(context.Background(), subtaskFor("analyst"))
	assert.Equal(t, ResultFailed, result.Status)
	assert.Equal(t, string(types.ErrBackendUnavailable), result.ErrorKind)
	assert.Contains(t, result.ErrorMsg, "connection refused")
}

func TestExecutor_Timeout(t *testing.T) {
	provider := alwaysText("too late")
	provider.delay = 500 * time.Millisecond
	e := NewExecutor(provider, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result := e.Execute(ctx, subtaskFor("analyst"))
	assert.Equal(t, ResultTimedOut, result.Status)
	assert.Equal(t, string(types.ErrTimeout), result.ErrorKind)
}

func TestExecutor_SystemPromptMentionsTools(t *testing.T) {
	provider := alwaysText("ok")
	e := NewExecutor(provider, echoRegistry(t), nil)

	e.Execute(context.Background(), subtaskFor("analyst", "echo"))

	reqs := provider.requests()
	require.Len(t, reqs, 1)
	system := reqs[0].Messages[0].Content
	assert.True(t, strings.Contains(system, "tools"))
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "echo", reqs[0].Tools[0].Name)
}
