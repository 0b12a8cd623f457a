package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vibecaas/nanoswarm/types"
)

// InMemoryStore 进程内 Job 存储。重启后异步轮询失效（优雅降级）。
type InMemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// NewInMemoryStore 创建空的进程内存储。
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{jobs: make(map[string]*Job)}
}

func (s *InMemoryStore) Create(_ context.Context, job *Job) error {
	if job == nil || job.RunID == "" {
		return fmt.Errorf("job run id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.RunID]; exists {
		return fmt.Errorf("job %s already exists", job.RunID)
	}

	now := time.Now()
	stored := *job
	stored.Status = StatusPending
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.jobs[job.RunID] = &stored
	return nil
}

func (s *InMemoryStore) transition(runID string, to Status, apply func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[runID]
	if !ok {
		return types.NewError(types.ErrNotFound, fmt.Sprintf("job %s not found", runID)).WithHTTPStatus(404)
	}
	if !canTransition(job.Status, to) {
		return transitionErr(runID, job.Status, to)
	}

	job.Status = to
	job.UpdatedAt = time.Now()
	if apply != nil {
		apply(job)
	}
	return nil
}

func (s *InMemoryStore) MarkRunning(_ context.Context, runID string) error {
	return s.transition(runID, StatusRunning, nil)
}

func (s *InMemoryStore) MarkCompleted(_ context.Context, runID string, result json.RawMessage) error {
	return s.transition(runID, StatusCompleted, func(j *Job) { j.Result = result })
}

func (s *InMemoryStore) MarkFailed(_ context.Context, runID string, detail string) error {
	return s.transition(runID, StatusFailed, func(j *Job) { j.ErrorDetail = detail })
}

func (s *InMemoryStore) Get(_ context.Context, runID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[runID]
	if !ok {
		return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("job %s not found", runID)).WithHTTPStatus(404)
	}
	copied := *job
	return &copied, nil
}

var _ Store = (*InMemoryStore)(nil)
