package swarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/vibecaas/nanoswarm/types"
)

// 分发默认值。并发天花板对应免费档后端的请求上限。
const (
	DefaultConcurrencyCeiling = 5
	DefaultAgentTimeout       = 60 * time.Second
	DefaultRunTimeout         = 300 * time.Second
)

// FanOutOptions 一次分发的资源边界。
type FanOutOptions struct {
	// Concurrency 请求的并发度；超过天花板会被静默钳制而非拒绝。
	Concurrency int
	// AgentTimeout 单专家墙钟超时。
	AgentTimeout time.Duration
	// RunTimeout 整批墙钟超时，从分发开始计。
	RunTimeout time.Duration
}

func (o FanOutOptions) withDefaults(ceiling int) FanOutOptions {
	if ceiling <= 0 {
		ceiling = DefaultConcurrencyCeiling
	}
	if o.Concurrency <= 0 || o.Concurrency > ceiling {
		o.Concurrency = ceiling
	}
	if o.AgentTimeout <= 0 {
		o.AgentTimeout = DefaultAgentTimeout
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}
	return o
}

// Dispatcher 在有界工作池内把子任务扇出给执行器。
// 活性保证：每个子任务恰好产生一个结果；单个超时不阻塞同批其余任务；
// 整批超时把未完成的任务定格为 timed_out，已完成的结果绝不丢弃。
type Dispatcher struct {
	executor *Executor
	ceiling  int
	logger   *zap.Logger
}

// NewDispatcher 创建分发器。ceiling 非正时取 DefaultConcurrencyCeiling。
func NewDispatcher(executor *Executor, ceiling int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ceiling <= 0 {
		ceiling = DefaultConcurrencyCeiling
	}
	return &Dispatcher{
		executor: executor,
		ceiling:  ceiling,
		logger:   logger.With(zap.String("component", "dispatcher")),
	}
}

// FanOut 并发执行全部子任务并按声明顺序返回结果。
// 收集按完成先后，呈现按 SubTask.Seq 重排，调用方观察不到完成顺序。
func (d *Dispatcher) FanOut(ctx context.Context, subtasks []SubTask, opts FanOutOptions) []SpecialistResult {
	if len(subtasks) == 0 {
		return nil
	}
	opts = opts.withDefaults(d.ceiling)

	workers := opts.Concurrency
	if len(subtasks) < workers {
		workers = len(subtasks)
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.RunTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(int64(workers))
	results := make([]SpecialistResult, len(subtasks))

	var wg sync.WaitGroup
	for i, st := range subtasks {
		wg.Add(1)
		go func(i int, st SubTask) {
			defer wg.Done()

			// 整批超时后未获得槽位的任务直接定格为 timed_out
			if err := sem.Acquire(runCtx, 1); err != nil {
				results[i] = timedOutResult(st, "run timeout elapsed before dispatch")
				return
			}
			defer sem.Release(1)

			taskCtx, taskCancel := context.WithTimeout(runCtx, opts.AgentTimeout)
			results[i] = d.safeExecute(taskCtx, st)
			taskCancel()
		}(i, st)
	}
	wg.Wait()

	for i := range results {
		if results[i].ID == "" {
			// 防御收口：任何路径都不允许留空洞
			results[i] = timedOutResult(subtasks[i], "no result produced")
		}
	}

	d.logResults(subtasks, results)
	return results
}

// safeExecute 执行单个子任务并吸收 panic：后端客户端或工具实现的
// panic 折叠为 failed 结果，绝不串毁同批任务。
func (d *Dispatcher) safeExecute(ctx context.Context, st SubTask) (res SpecialistResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("specialist panicked",
				zap.String("subtask", st.ID),
				zap.String("role", st.Role.Name),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			res = SpecialistResult{
				ID:        st.ID,
				Role:      st.Role.Name,
				Status:    ResultFailed,
				ErrorKind: string(types.ErrOrchestrationFault),
				ErrorMsg:  fmt.Sprintf("specialist panic: %v", r),
			}
		}
	}()
	return d.executor.Execute(ctx, st)
}

func timedOutResult(st SubTask, msg string) SpecialistResult {
	return SpecialistResult{
		ID:        st.ID,
		Role:      st.Role.Name,
		Status:    ResultTimedOut,
		ErrorKind: string(types.ErrTimeout),
		ErrorMsg:  msg,
	}
}

func (d *Dispatcher) logResults(subtasks []SubTask, results []SpecialistResult) {
	var ok, failed, timedOut int
	for _, r := range results {
		switch r.Status {
		case ResultOK:
			ok++
		case ResultTimedOut:
			timedOut++
		default:
			failed++
		}
	}
	d.logger.Info("fan-out complete",
		zap.Int("subtasks", len(subtasks)),
		zap.Int("ok", ok),
		zap.Int("failed", failed),
		zap.Int("timed_out", timedOut))
}
