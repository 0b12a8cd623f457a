// Package jobs 提供运行任务（Job）的持久化：异步提交/轮询的基础。
// Job 状态单调推进：pending → running → completed|failed；
// 编排级故障允许 pending → failed 直达。同一 run id 的写入按键串行化。
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Status Job 生命周期状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal 是否终态。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// canTransition 单调状态机校验
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusFailed
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// Job 一次 swarm 运行的持久化记录。Result 为序列化后的 RunResult，
// 仅在 completed 时存在；ErrorDetail 仅在 failed 时存在。
type Job struct {
	RunID       string          `json:"run_id"`
	Status      Status          `json:"status"`
	TeamName    string          `json:"team_name"`
	Objective   string          `json:"objective,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Store Job 存储。未知 run id 返回 NOT_FOUND；非法状态迁移返回错误。
type Store interface {
	// Create 以 pending 状态创建 Job。
	Create(ctx context.Context, job *Job) error
	// MarkRunning pending → running。
	MarkRunning(ctx context.Context, runID string) error
	// MarkCompleted running → completed，写入序列化结果。
	MarkCompleted(ctx context.Context, runID string, result json.RawMessage) error
	// MarkFailed {pending,running} → failed，写入错误详情。
	MarkFailed(ctx context.Context, runID string, detail string) error
	// Get 按 run id 读取 Job。
	Get(ctx context.Context, runID string) (*Job, error)
}

func transitionErr(runID string, from, to Status) error {
	return fmt.Errorf("job %s: illegal transition %s -> %s", runID, from, to)
}
