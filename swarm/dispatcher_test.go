package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/types"
)

// roleDelayProvider 按角色名决定应答延迟，用于制造乱序完成。
// 延迟在 ctx 感知路径上生效，超时任务不会拖住整批。
func roleDelayProvider(delays map[string]time.Duration) *scriptedProvider {
	roleOf := func(req *llm.ChatRequest) string {
		system := req.Messages[0].Content
		for role := range delays {
			if strings.Contains(system, role) {
				return role
			}
		}
		return ""
	}
	return &scriptedProvider{
		delayFn: func(req *llm.ChatRequest) time.Duration {
			return delays[roleOf(req)]
		},
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			return textResponse("answer from " + roleOf(req)), nil
		},
	}
}

func makeSubtasks(n int) []SubTask {
	out := make([]SubTask, n)
	for i := range out {
		name := fmt.Sprintf("role-%d", i)
		out[i] = SubTask{
			ID:        fmt.Sprintf("st-%d", i),
			Seq:       i,
			Role:      testRole(name, 1.0),
			Objective: "objective",
		}
	}
	return out
}

func TestFanOut_DeclarationOrderDespiteCompletionOrder(t *testing.T) {
	provider := roleDelayProvider(map[string]time.Duration{
		"role-0": 120 * time.Millisecond,
		"role-1": 10 * time.Millisecond,
	})
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	results := d.FanOut(context.Background(), makeSubtasks(2), FanOutOptions{})
	require.Len(t, results, 2)
	// role-1 先完成，但呈现顺序跟随声明顺序
	assert.Equal(t, "role-0", results[0].Role)
	assert.Equal(t, "role-1", results[1].Role)
	assert.Equal(t, "answer from role-0", results[0].Output)
	assert.Equal(t, "answer from role-1", results[1].Output)
}

func TestFanOut_ExactlyOneResultPerSubtask(t *testing.T) {
	provider := alwaysText("done")
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	subtasks := makeSubtasks(5)
	results := d.FanOut(context.Background(), subtasks, FanOutOptions{})
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, subtasks[i].ID, r.ID)
		assert.NotEmpty(t, r.Status)
	}
}

func TestFanOut_PerAgentTimeoutDoesNotBlockOthers(t *testing.T) {
	provider := roleDelayProvider(map[string]time.Duration{
		"role-0": 5 * time.Second,
		"role-1": 5 * time.Millisecond,
	})
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	start := time.Now()
	results := d.FanOut(context.Background(), makeSubtasks(2), FanOutOptions{
		AgentTimeout: 80 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Len(t, results, 2)
	assert.Equal(t, ResultTimedOut, results[0].Status)
	assert.Equal(t, ResultOK, results[1].Status)
	assert.Less(t, elapsed, 2*time.Second, "slow agent must not stall the batch")
}

func TestFanOut_RunTimeoutPreservesCompletedWork(t *testing.T) {
	provider := roleDelayProvider(map[string]time.Duration{
		"role-0": 30 * time.Millisecond,
		"role-1": 30 * time.Millisecond,
		"role-2": 30 * time.Millisecond,
	})
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	results := d.FanOut(context.Background(), makeSubtasks(3), FanOutOptions{
		Concurrency: 1,
		RunTimeout:  50 * time.Millisecond,
	})

	require.Len(t, results, 3)
	var ok, timedOut int
	for _, r := range results {
		switch r.Status {
		case ResultOK:
			ok++
		case ResultTimedOut:
			timedOut++
		}
	}
	// 先完成的工作保留，未赶上的定格为 timed_out
	assert.GreaterOrEqual(t, ok, 1)
	assert.GreaterOrEqual(t, timedOut, 1)
}

func TestFanOut_ClampsConcurrencyToCeiling(t *testing.T) {
	var inflight, maxInflight atomic.Int32
	provider := &scriptedProvider{
		script: func(int, *llm.ChatRequest) (*llm.ChatResponse, error) {
			cur := inflight.Add(1)
			for {
				prev := maxInflight.Load()
				if cur <= prev || maxInflight.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inflight.Add(-1)
			return textResponse("done"), nil
		},
	}
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	// 请求 50 并发被静默钳制到天花板，不报错
	results := d.FanOut(context.Background(), makeSubtasks(12), FanOutOptions{Concurrency: 50})
	require.Len(t, results, 12)
	for _, r := range results {
		assert.Equal(t, ResultOK, r.Status)
	}
	assert.LessOrEqual(t, maxInflight.Load(), int32(DefaultConcurrencyCeiling))
}

func TestFanOut_EmptySubtasks(t *testing.T) {
	d := NewDispatcher(NewExecutor(alwaysText("x"), nil, nil), 0, nil)
	assert.Nil(t, d.FanOut(context.Background(), nil, FanOutOptions{}))
}

func TestFanOut_PanicFoldsIntoFailedResult(t *testing.T) {
	// 后端客户端对 role-0 直接 panic，其余角色正常应答
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if strings.Contains(req.Messages[0].Content, "role-0") {
				panic("backend client bug")
			}
			return textResponse("fine"), nil
		},
	}
	d := NewDispatcher(NewExecutor(provider, nil, nil), 0, nil)

	results := d.FanOut(context.Background(), makeSubtasks(2), FanOutOptions{})

	require.Len(t, results, 2)
	assert.Equal(t, ResultFailed, results[0].Status)
	assert.Equal(t, "ORCHESTRATION_FAULT", results[0].ErrorKind)
	assert.Contains(t, results[0].ErrorMsg, "backend client bug")
	assert.Equal(t, ResultOK, results[1].Status)
}

func TestFanOut_PanickingToolDoesNotKillSiblings(t *testing.T) {
	reg := echoRegistry(t)
	require.NoError(t, reg.Register(
		types.ToolSchema{Name: "detonate", Parameters: json.RawMessage(`{"type":"object"}`)},
		func(context.Context, json.RawMessage) (any, error) {
			panic("tool bug")
		}))

	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if strings.Contains(req.Messages[0].Content, "role-0") {
				return toolCallResponse(types.ToolCall{
					ID: "c1", Name: "detonate", Arguments: json.RawMessage(`{}`),
				}), nil
			}
			return textResponse("fine"), nil
		},
	}

	subtasks := makeSubtasks(2)
	subtasks[0].Role.Tools = []string{"detonate"}

	d := NewDispatcher(NewExecutor(provider, reg, nil), 0, nil)
	results := d.FanOut(context.Background(), subtasks, FanOutOptions{})

	require.Len(t, results, 2)
	assert.Equal(t, ResultFailed, results[0].Status)
	assert.Equal(t, "ORCHESTRATION_FAULT", results[0].ErrorKind)
	assert.Equal(t, ResultOK, results[1].Status)
}
