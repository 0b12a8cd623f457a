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

	"github.com/vibecaas/nanoswarm/jobs"
	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/memory"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/types"
)

func newTestOrchestrator(t *testing.T, provider *scriptedProvider, reg *team.Registry,
	memStore memory.Store) (*Orchestrator, jobs.Store) {
	t.Helper()

	jobStore := jobs.NewInMemoryStore()
	o := NewOrchestrator(
		NewDirector(reg, nil, nil),
		NewDispatcher(NewExecutor(provider, nil, nil), 0, nil),
		NewSynthesizer(nil),
		reg, jobStore, memStore, nil,
		Options{AgentTimeout: 5 * time.Second, RunTimeout: 10 * time.Second},
		nil,
	)
	return o, jobStore
}

func growthRegistry() *team.Registry {
	return registryWith(testTeam("growth",
		testRole("strategist", 1.0),
		testRole("copywriter", 0.8),
	))
}

func TestOrchestrator_SyncRun(t *testing.T) {
	provider := alwaysText("specialist output")
	o, _ := newTestOrchestrator(t, provider, growthRegistry(), memory.NewInMemoryStore(0))

	result, err := o.Run(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "growth",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "growth", result.TeamName)
	assert.Equal(t, RunCompleted, result.Status)
	assert.Len(t, result.AgentOutputs, 2)
	assert.Len(t, result.Deliverables, 2)
}

func TestOrchestrator_SyncUnknownTeam(t *testing.T) {
	o, _ := newTestOrchestrator(t, alwaysText("x"), growthRegistry(), nil)

	_, err := o.Run(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "nonexistent",
	})
	assert.Equal(t, types.ErrUnknownTeam, types.GetErrorCode(err))
}

func TestOrchestrator_RoutesByKeyword(t *testing.T) {
	reg := team.NewRegistry(nil)
	require.NoError(t, team.RegisterBuiltin(reg))
	provider := alwaysText("specialist output")
	o, _ := newTestOrchestrator(t, provider, reg, nil)

	result, err := o.Run(context.Background(), RunRequest{
		Objective: "score and qualify the inbound leads from last week",
	})
	require.NoError(t, err)
	assert.Equal(t, "lead-generation-engine", result.TeamName)
	// 默认专家数上限裁剪大团队
	assert.Len(t, result.AgentOutputs, DefaultMaxAgents)
}

func TestOrchestrator_PartialFailureStillReturns(t *testing.T) {
	provider := &scriptedProvider{
		script: func(call int, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			if strings.Contains(req.Messages[0].Content, "copywriter") {
				return nil, types.NewError(types.ErrBackendUnavailable, "down")
			}
			return textResponse("strategist output"), nil
		},
	}
	o, _ := newTestOrchestrator(t, provider, growthRegistry(), nil)

	result, err := o.Run(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "growth",
	})
	require.NoError(t, err, "specialist failure is data, not an error")
	assert.Equal(t, RunPartial, result.Status)
	assert.Len(t, result.AgentOutputs, 2)
	assert.Contains(t, result.Summary, "Did not complete: copywriter")
}

func TestOrchestrator_AsyncLifecycle(t *testing.T) {
	provider := alwaysText("async specialist output")
	o, _ := newTestOrchestrator(t, provider, growthRegistry(), nil)

	runID, err := o.Submit(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "growth",
		Async:     true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	// 状态单调推进到终态
	var last jobs.Status
	deadline := time.After(5 * time.Second)
	for {
		job, err := o.GetStatus(context.Background(), runID)
		require.NoError(t, err)

		switch last {
		case jobs.StatusRunning:
			assert.NotEqual(t, jobs.StatusPending, job.Status, "status must not regress")
		case jobs.StatusCompleted, jobs.StatusFailed:
			assert.Equal(t, last, job.Status, "terminal status must not change")
		}
		last = job.Status

		if job.Status.Terminal() {
			require.Equal(t, jobs.StatusCompleted, job.Status)
			var result RunResult
			require.NoError(t, json.Unmarshal(job.Result, &result))
			assert.Equal(t, runID, result.RunID)
			assert.Equal(t, RunCompleted, result.Status)
			break
		}

		select {
		case <-deadline:
			t.Fatalf("job did not reach terminal status, last=%s", last)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestOrchestrator_AsyncUnknownTeamFailsFast(t *testing.T) {
	o, _ := newTestOrchestrator(t, alwaysText("x"), growthRegistry(), nil)

	_, err := o.Submit(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "nonexistent",
		Async:     true,
	})
	assert.Equal(t, types.ErrUnknownTeam, types.GetErrorCode(err))
}

func TestOrchestrator_GetStatusUnknownRun(t *testing.T) {
	o, _ := newTestOrchestrator(t, alwaysText("x"), growthRegistry(), nil)

	_, err := o.GetStatus(context.Background(), "no-such-run")
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestOrchestrator_ThreadMemoryReadAndAppend(t *testing.T) {
	provider := alwaysText("specialist output")
	memStore := memory.NewInMemoryStore(0)
	o, _ := newTestOrchestrator(t, provider, growthRegistry(), memStore)

	_, err := o.Run(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "growth",
		ThreadID:  "thread-1",
	})
	require.NoError(t, err)

	entries, err := memStore.Read(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "growth")
	assert.Contains(t, entries[0], "completed")

	// 第二次运行的提示里出现线程记忆
	_, err = o.Run(context.Background(), RunRequest{
		Objective: "Refine the launch plan",
		Team:      "growth",
		ThreadID:  "thread-1",
	})
	require.NoError(t, err)

	var sawMemory bool
	for _, req := range provider.requests() {
		for _, m := range req.Messages {
			if m.Role == types.RoleUser && strings.Contains(m.Content, "Prior runs in this thread") {
				sawMemory = true
			}
		}
	}
	assert.True(t, sawMemory, "second run prompt should carry thread memory")
}

type brokenMemory struct{}

func (brokenMemory) Append(ctx context.Context, threadID, summary string) error {
	return errors.New("redis connection refused")
}

func (brokenMemory) Read(ctx context.Context, threadID string) ([]string, error) {
	return nil, errors.New("redis connection refused")
}

func TestOrchestrator_MemoryOutageDoesNotFailRun(t *testing.T) {
	provider := alwaysText("specialist output")
	o, _ := newTestOrchestrator(t, provider, growthRegistry(), brokenMemory{})

	result, err := o.Run(context.Background(), RunRequest{
		Objective: "Plan the launch",
		Team:      "growth",
		ThreadID:  "thread-1",
	})
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, result.Status)
}

func TestOrchestrator_ListAndGetTeams(t *testing.T) {
	o, _ := newTestOrchestrator(t, alwaysText("x"), growthRegistry(), nil)

	teams := o.ListTeams()
	require.Len(t, teams, 1)
	assert.Equal(t, "growth", teams[0].Name)

	tm, err := o.GetTeam("growth")
	require.NoError(t, err)
	assert.Len(t, tm.Roles, 2)

	_, err = o.GetTeam("nope")
	assert.Equal(t, types.ErrUnknownTeam, types.GetErrorCode(err))
}
