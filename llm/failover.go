package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vibecaas/nanoswarm/llm/retry"
	"github.com/vibecaas/nanoswarm/types"
)

// FailoverProvider 主备后端链：主后端失败时按序降级到备用后端。
// 原服务的约定是 Ollama Cloud 为主、NVIDIA NIM 为备，任何主后端错误
// 都触发降级；成功响应会带上实际服务的后端名称。
// 可重试错误（限流、瞬时网络故障）先在当前后端退避重试，重试耗尽
// 才降级到下一个后端。
type FailoverProvider struct {
	backends []Provider
	limiter  *rate.Limiter
	retryer  *retry.Retryer
	logger   *zap.Logger
}

// defaultRetryPolicy 同后端重试策略：只重试标记为可重试的错误，
// 退避间隔压在秒级以内，避免吃掉专家超时预算。
func defaultRetryPolicy() *retry.Policy {
	return &retry.Policy{
		MaxRetries:   2,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable:    types.IsRetryable,
	}
}

// NewFailoverProvider 创建主备链。backends 按优先级排列，至少一个。
// rps <= 0 时不限流。
func NewFailoverProvider(backends []Provider, rps float64, logger *zap.Logger) (*FailoverProvider, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("failover provider requires at least one backend")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	flLogger := logger.With(zap.String("component", "llm_failover"))
	return &FailoverProvider{
		backends: backends,
		limiter:  limiter,
		retryer:  retry.New(defaultRetryPolicy(), flLogger),
		logger:   flLogger,
	}, nil
}

// WithRetryPolicy 覆盖同后端重试策略。
func (p *FailoverProvider) WithRetryPolicy(policy *retry.Policy) *FailoverProvider {
	p.retryer = retry.New(policy, p.logger)
	return p
}

// Name 返回主后端名称。
func (p *FailoverProvider) Name() string { return p.backends[0].Name() }

// Complete 依次尝试各后端，全部失败时返回最后一个错误。
func (p *FailoverProvider) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.ErrTimeout, "rate limit wait cancelled").WithCause(err)
		}
	}

	var lastErr error
	for i, backend := range p.backends {
		var resp *ChatResponse
		err := p.retryer.Do(ctx, func() error {
			r, callErr := backend.Complete(ctx, req)
			if callErr != nil {
				return callErr
			}
			resp = r
			return nil
		})
		if err == nil {
			resp.Backend = backend.Name()
			return resp, nil
		}
		lastErr = err

		// context 已取消时继续降级毫无意义
		if ctx.Err() != nil {
			return nil, err
		}

		if i < len(p.backends)-1 {
			p.logger.Warn("backend failed, failing over",
				zap.String("backend", backend.Name()),
				zap.String("next", p.backends[i+1].Name()),
				zap.Error(err),
			)
		}
	}

	return nil, types.NewError(types.ErrBackendUnavailable, "all inference backends failed").
		WithCause(lastErr).
		WithRetryable(true)
}

// HealthCheck 只要任一后端健康即视为健康。
func (p *FailoverProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var last *HealthStatus
	var lastErr error
	for _, backend := range p.backends {
		status, err := backend.HealthCheck(ctx)
		if err == nil && status.Healthy {
			return status, nil
		}
		last, lastErr = status, err
	}
	if last == nil {
		last = &HealthStatus{}
	}
	return last, lastErr
}
