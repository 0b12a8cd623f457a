package swarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/llm/tokenizer"
	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/types"
)

// DefaultToolRounds 单次执行允许的工具调用轮数上限
const DefaultToolRounds = 4

// Executor 针对推理后端执行单个子任务。角色差异完全由数据表达
// （指令 + 工具许可），执行逻辑对所有角色一致。
// 专家失败折叠进结果，绝不向上抛出。
type Executor struct {
	provider   llm.Provider
	registry   *tool.Registry
	counter    tokenizer.Tokenizer
	toolRounds int
	logger     *zap.Logger
}

// NewExecutor 创建执行器。registry 可为 nil（无工具团队）。
func NewExecutor(provider llm.Provider, registry *tool.Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		provider:   provider,
		registry:   registry,
		counter:    tokenizer.ForModel(""),
		toolRounds: DefaultToolRounds,
		logger:     logger.With(zap.String("component", "executor")),
	}
}

// WithToolRounds 覆盖工具调用轮数上限。
func (e *Executor) WithToolRounds(n int) *Executor {
	if n > 0 {
		e.toolRounds = n
	}
	return e
}

// Execute 执行一个子任务并返回其结果。结果状态：
// ok / failed（后端错误、畸形响应重试后仍失败）/ timed_out（超时或取消）。
func (e *Executor) Execute(ctx context.Context, st SubTask) SpecialistResult {
	start := time.Now()
	result := SpecialistResult{ID: st.ID, Role: st.Role.Name}

	messages := e.buildPrompt(st)
	var schemas []types.ToolSchema
	if e.registry != nil && len(st.Role.Tools) > 0 {
		schemas = e.registry.Schemas(st.Role.Tools)
	}

	permitted := make(map[string]bool, len(st.Role.Tools))
	for _, name := range st.Role.Tools {
		permitted[name] = true
	}

	retriedMalformed := false
	for round := 0; ; round++ {
		req := &llm.ChatRequest{
			TraceID:     st.ID,
			Messages:    messages,
			Temperature: float32(st.Temperature),
			MaxTokens:   st.MaxTokens,
		}
		// 轮数耗尽后收回工具，强制产出最终答案
		if round < e.toolRounds {
			req.Tools = schemas
		}

		resp, err := e.provider.Complete(ctx, req)
		if err != nil {
			if e.foldError(ctx, st, err, &result, &retriedMalformed) {
				continue
			}
			result.Latency = time.Since(start)
			return result
		}

		result.Backend = resp.Backend
		result.Usage.Add(resp.Usage)

		msg := resp.First()
		if len(msg.ToolCalls) > 0 && round < e.toolRounds {
			messages = append(messages, msg)
			messages = append(messages, e.runToolCalls(ctx, msg.ToolCalls, permitted, &result)...)
			continue
		}

		if strings.TrimSpace(msg.Content) == "" {
			if !retriedMalformed {
				retriedMalformed = true
				e.logger.Debug("empty completion, retrying once",
					zap.String("subtask", st.ID), zap.String("role", st.Role.Name))
				continue
			}
			result.Status = ResultFailed
			result.ErrorKind = string(types.ErrMalformedResponse)
			result.ErrorMsg = "backend returned empty completion twice"
			result.Latency = time.Since(start)
			return result
		}

		result.Status = ResultOK
		result.Output = msg.Content
		e.accountTokens(st, &result)
		result.Latency = time.Since(start)
		return result
	}
}

// foldError 将后端错误折叠进结果。返回 true 表示应重试本轮。
func (e *Executor) foldError(ctx context.Context, st SubTask, err error,
	result *SpecialistResult, retriedMalformed *bool) bool {

	code := types.GetErrorCode(err)

	if code == types.ErrMalformedResponse && !*retriedMalformed {
		*retriedMalformed = true
		e.logger.Debug("malformed response, retrying once",
			zap.String("subtask", st.ID), zap.Error(err))
		return true
	}

	switch {
	case code == types.ErrTimeout,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		ctx.Err() != nil:
		result.Status = ResultTimedOut
		result.ErrorKind = string(types.ErrTimeout)
	case code == types.ErrMalformedResponse:
		result.Status = ResultFailed
		result.ErrorKind = string(types.ErrMalformedResponse)
	default:
		result.Status = ResultFailed
		result.ErrorKind = string(types.ErrBackendUnavailable)
	}
	result.ErrorMsg = err.Error()

	var terr *types.Error
	if errors.As(err, &terr) && terr.Backend != "" {
		result.Backend = terr.Backend
	}
	return false
}

// runToolCalls 执行一轮工具调用并返回 tool 角色消息。
// 未许可与执行失败都折叠为调用痕迹 + 错误消息，执行继续。
func (e *Executor) runToolCalls(ctx context.Context, calls []types.ToolCall,
	permitted map[string]bool, result *SpecialistResult) []types.Message {

	out := make([]types.Message, 0, len(calls))
	for _, call := range calls {
		trace := tool.Result{Name: call.Name, CallID: call.ID}

		switch {
		case !permitted[call.Name]:
			trace.Error = fmt.Sprintf("%s: tool %q not permitted for this role", types.ErrToolNotPermitted, call.Name)
		case e.registry == nil:
			trace.Error = fmt.Sprintf("%s: no tool registry attached", types.ErrToolExecution)
		default:
			output, err := e.registry.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				trace.Error = err.Error()
			} else {
				trace.Output = output
			}
		}

		result.ToolTrace = append(result.ToolTrace, trace)

		content := trace.Error
		if trace.Error == "" {
			if data, err := json.Marshal(trace.Output); err == nil {
				content = string(data)
			} else {
				content = fmt.Sprintf("%v", trace.Output)
			}
		}
		out = append(out, types.Message{
			Role:       types.RoleTool,
			Name:       call.Name,
			Content:    content,
			ToolCallID: call.ID,
		})
	}
	return out
}

// buildPrompt 组装专家提示：角色指令 + 目标 + 上下文 + 线程记忆。
func (e *Executor) buildPrompt(st SubTask) []types.Message {
	system := st.Role.Instructions
	if len(st.Role.Tools) > 0 {
		system += "\n\nYou may call the provided tools when a calculation is needed. " +
			"Use tool results verbatim; never invent numbers."
	}

	var user strings.Builder
	fmt.Fprintf(&user, "## Objective\n%s\n", st.Objective)

	if len(st.Context) > 0 {
		user.WriteString("\n## Context\n")
		keys := make([]string, 0, len(st.Context))
		for k := range st.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&user, "- %s: %v\n", k, st.Context[k])
		}
	}

	if len(st.Memory) > 0 {
		user.WriteString("\n## Prior runs in this thread\n")
		for _, m := range st.Memory {
			fmt.Fprintf(&user, "- %s\n", m)
		}
	}

	return []types.Message{
		{Role: types.RoleSystem, Content: system},
		{Role: types.RoleUser, Content: user.String()},
	}
}

// accountTokens 后端未返回用量时用分词器估算，保证成本核算不缺数。
func (e *Executor) accountTokens(st SubTask, result *SpecialistResult) {
	if result.Usage.TotalTokens > 0 {
		return
	}
	promptTokens, _ := e.counter.CountTokens(st.Role.Instructions + st.Objective)
	outputTokens, _ := e.counter.CountTokens(result.Output)
	result.Usage.PromptTokens = promptTokens
	result.Usage.CompletionTokens = outputTokens
	result.Usage.TotalTokens = promptTokens + outputTokens
}
