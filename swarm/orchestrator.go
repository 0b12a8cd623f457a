package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/internal/metrics"
	"github.com/vibecaas/nanoswarm/jobs"
	"github.com/vibecaas/nanoswarm/memory"
	"github.com/vibecaas/nanoswarm/team"
)

const tracerName = "github.com/vibecaas/nanoswarm/swarm"

// Options 编排器的运行边界。
type Options struct {
	AgentTimeout time.Duration
	RunTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.AgentTimeout <= 0 {
		o.AgentTimeout = DefaultAgentTimeout
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}
	return o
}

// Orchestrator 顶层入口：组合 Director、Dispatcher、Synthesizer、
// Job 存储与线程记忆，提供同步 Run 与异步 Submit/GetStatus。
// 调用方要么拿到结构化结果（同步），要么能轮询到终态（异步），
// 进程不崩溃就不会出现结局不可知的运行。
type Orchestrator struct {
	director    *Director
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	teams       *team.Registry
	jobs        jobs.Store
	memory      memory.Store
	collector   *metrics.Collector
	opts        Options
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewOrchestrator 创建编排器。collector 可为 nil（不记指标）。
func NewOrchestrator(director *Director, dispatcher *Dispatcher, synthesizer *Synthesizer,
	teams *team.Registry, jobStore jobs.Store, memStore memory.Store,
	collector *metrics.Collector, opts Options, logger *zap.Logger) *Orchestrator {

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		director:    director,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		teams:       teams,
		jobs:        jobStore,
		memory:      memStore,
		collector:   collector,
		opts:        opts.withDefaults(),
		tracer:      otel.Tracer(tracerName),
		logger:      logger.With(zap.String("component", "orchestrator")),
	}
}

// Run 同步执行：阻塞到合成完成并内联返回结果。
// 只有 UNKNOWN_TEAM / INVALID_REQUEST / ORCHESTRATION_FAULT 作为错误返回；
// 专家级失败体现在 RunResult.Status 里。
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	runID := uuid.New().String()
	return o.execute(ctx, runID, req, nil)
}

// Submit 异步提交：创建 pending Job，后台执行，立即返回 run id。
func (o *Orchestrator) Submit(ctx context.Context, req RunRequest) (string, error) {
	teamName := req.Team
	if teamName == "" {
		teamName = team.Route(req.Objective)
	}
	// 未知团队在提交时快速失败，不浪费后台调度
	if _, err := o.teams.Resolve(teamName); err != nil {
		return "", err
	}

	runID := uuid.New().String()
	job := &jobs.Job{RunID: runID, TeamName: teamName, Objective: req.Objective}
	if err := o.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	o.recordJobTransition(string(jobs.StatusPending))

	req.Team = teamName
	go o.runAsync(runID, req)
	return runID, nil
}

func (o *Orchestrator) runAsync(runID string, req RunRequest) {
	// 后台运行不继承提交请求的取消；生命周期由 RunTimeout 决定
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.RunTimeout+10*time.Second)
	defer cancel()

	onDispatch := func() {
		if err := o.jobs.MarkRunning(ctx, runID); err != nil {
			o.logger.Warn("mark running failed", zap.String("run_id", runID), zap.Error(err))
		} else {
			o.recordJobTransition(string(jobs.StatusRunning))
		}
	}

	result, err := o.execute(ctx, runID, req, onDispatch)
	if err != nil {
		if ferr := o.jobs.MarkFailed(ctx, runID, err.Error()); ferr != nil {
			o.logger.Error("mark failed failed", zap.String("run_id", runID), zap.Error(ferr))
		}
		o.recordJobTransition(string(jobs.StatusFailed))
		return
	}

	data, merr := json.Marshal(result)
	if merr != nil {
		_ = o.jobs.MarkFailed(ctx, runID, fmt.Sprintf("serialize result: %v", merr))
		o.recordJobTransition(string(jobs.StatusFailed))
		return
	}
	if cerr := o.jobs.MarkCompleted(ctx, runID, data); cerr != nil {
		o.logger.Error("mark completed failed", zap.String("run_id", runID), zap.Error(cerr))
		return
	}
	o.recordJobTransition(string(jobs.StatusCompleted))
}

// GetStatus 按 run id 查询 Job。未知 id 返回 NOT_FOUND。
func (o *Orchestrator) GetStatus(ctx context.Context, runID string) (*jobs.Job, error) {
	return o.jobs.Get(ctx, runID)
}

// ListTeams 返回已注册团队。
func (o *Orchestrator) ListTeams() []team.Team {
	return o.teams.List()
}

// GetTeam 按名返回团队详情。
func (o *Orchestrator) GetTeam(name string) (team.Team, error) {
	return o.teams.Resolve(name)
}

// execute 运行一次完整流水线。onDispatch 在分发开始前调用（异步模式
// 用它把 Job 推进到 running）。
func (o *Orchestrator) execute(ctx context.Context, runID string, req RunRequest,
	onDispatch func()) (*RunResult, error) {

	teamName := req.Team
	if teamName == "" {
		teamName = team.Route(req.Objective)
	}

	ctx, span := o.tracer.Start(ctx, "swarm.Run",
		trace.WithAttributes(
			attribute.String("swarm.run_id", runID),
			attribute.String("swarm.team", teamName),
		))
	defer span.End()

	start := time.Now()
	threadMemory := o.readMemory(ctx, req.ThreadID)

	subtasks, tm, err := o.director.Decompose(ctx, req.Objective, teamName,
		req.Context, threadMemory, req.MaxAgents)
	if err != nil {
		o.recordRun(string(RunFailed), time.Since(start))
		return nil, err
	}

	o.logger.Info("run dispatching",
		zap.String("run_id", runID),
		zap.String("team", tm.Name),
		zap.Int("subtasks", len(subtasks)))

	if onDispatch != nil {
		onDispatch()
	}

	fanCtx, fanSpan := o.tracer.Start(ctx, "swarm.FanOut",
		trace.WithAttributes(attribute.Int("swarm.subtasks", len(subtasks))))
	results := o.dispatcher.FanOut(fanCtx, subtasks, FanOutOptions{
		Concurrency:  req.MaxAgents,
		AgentTimeout: o.opts.AgentTimeout,
		RunTimeout:   o.opts.RunTimeout,
	})
	fanSpan.End()

	result := o.synthesizer.Merge(runID, tm.Name, subtasks, results, time.Since(start))
	o.recordResults(result)

	if result.Status != RunFailed {
		o.appendMemory(ctx, req.ThreadID, tm.Name, req.Objective, result)
	}
	return result, nil
}

// readMemory 尽力读取线程记忆；存储故障降级为空记忆，不失败运行。
func (o *Orchestrator) readMemory(ctx context.Context, threadID string) []string {
	if threadID == "" || o.memory == nil {
		return nil
	}
	entries, err := o.memory.Read(ctx, threadID)
	if err != nil {
		o.logger.Warn("thread memory unavailable, proceeding without",
			zap.String("thread_id", threadID), zap.Error(err))
		return nil
	}
	return entries
}

func (o *Orchestrator) appendMemory(ctx context.Context, threadID, teamName, objective string, result *RunResult) {
	if threadID == "" || o.memory == nil {
		return
	}
	summary := fmt.Sprintf("[%s] %s -> %s (%d/%d specialists ok)",
		teamName, truncate(objective, 120), result.Status,
		len(result.Deliverables), len(result.AgentOutputs))
	if err := o.memory.Append(ctx, threadID, summary); err != nil {
		o.logger.Warn("thread memory append failed",
			zap.String("thread_id", threadID), zap.Error(err))
	}
}

func (o *Orchestrator) recordRun(status string, latency time.Duration) {
	if o.collector != nil {
		o.collector.RecordRun(status, latency)
	}
}

func (o *Orchestrator) recordResults(result *RunResult) {
	o.recordRun(string(result.Status), result.Latency)
	if o.collector == nil {
		return
	}
	for _, r := range result.AgentOutputs {
		o.collector.RecordSpecialist(string(r.Status), r.Latency, r.Usage.TotalTokens, r.Usage.Cost)
	}
}

func (o *Orchestrator) recordJobTransition(to string) {
	if o.collector != nil {
		o.collector.RecordJobTransition(to)
	}
}

// truncate 在 n 字节内截断，回退到符文边界，不产生半个 UTF-8 序列。
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
