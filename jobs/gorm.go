package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/vibecaas/nanoswarm/types"
)

// jobRecord gorm 表模型
type jobRecord struct {
	RunID       string `gorm:"primaryKey;size:64"`
	Status      string `gorm:"size:16;index"`
	TeamName    string `gorm:"size:128"`
	Objective   string
	Result      []byte
	ErrorDetail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (jobRecord) TableName() string { return "swarm_jobs" }

func (r *jobRecord) toJob() *Job {
	return &Job{
		RunID:       r.RunID,
		Status:      Status(r.Status),
		TeamName:    r.TeamName,
		Objective:   r.Objective,
		Result:      json.RawMessage(r.Result),
		ErrorDetail: r.ErrorDetail,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// GormStore 基于 gorm 的持久化 Job 存储。状态迁移在事务内校验，
// 保证同一 run id 的写入不会互相覆盖前一状态。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 基于已有 gorm 连接创建存储并自动迁移表结构。
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&jobRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewSQLiteStore 打开（或创建）sqlite 文件并返回存储。
// 纯 Go 驱动，无 CGO 依赖。
func NewSQLiteStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
	}
	return NewGormStore(db)
}

func (s *GormStore) Create(ctx context.Context, job *Job) error {
	if job == nil || job.RunID == "" {
		return fmt.Errorf("job run id cannot be empty")
	}

	now := time.Now()
	rec := jobRecord{
		RunID:     job.RunID,
		Status:    string(StatusPending),
		TeamName:  job.TeamName,
		Objective: job.Objective,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create job %s: %w", job.RunID, err)
	}
	return nil
}

func (s *GormStore) transition(ctx context.Context, runID string, to Status, apply func(*jobRecord)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec jobRecord
		if err := tx.First(&rec, "run_id = ?", runID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrNotFound,
					fmt.Sprintf("job %s not found", runID)).WithHTTPStatus(404)
			}
			return err
		}
		if !canTransition(Status(rec.Status), to) {
			return transitionErr(runID, Status(rec.Status), to)
		}

		rec.Status = string(to)
		rec.UpdatedAt = time.Now()
		if apply != nil {
			apply(&rec)
		}
		return tx.Save(&rec).Error
	})
}

func (s *GormStore) MarkRunning(ctx context.Context, runID string) error {
	return s.transition(ctx, runID, StatusRunning, nil)
}

func (s *GormStore) MarkCompleted(ctx context.Context, runID string, result json.RawMessage) error {
	return s.transition(ctx, runID, StatusCompleted, func(r *jobRecord) { r.Result = result })
}

func (s *GormStore) MarkFailed(ctx context.Context, runID string, detail string) error {
	return s.transition(ctx, runID, StatusFailed, func(r *jobRecord) { r.ErrorDetail = detail })
}

func (s *GormStore) Get(ctx context.Context, runID string) (*Job, error) {
	var rec jobRecord
	err := s.db.WithContext(ctx).First(&rec, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrNotFound,
			fmt.Sprintf("job %s not found", runID)).WithHTTPStatus(404)
	}
	if err != nil {
		return nil, err
	}
	return rec.toJob(), nil
}

var _ Store = (*GormStore)(nil)
