package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vibecaas/nanoswarm/types"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	gs, err := NewGormStore(db)
	require.NoError(t, err)

	return map[string]Store{
		"inmemory": NewInMemoryStore(),
		"gorm":     gs,
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job := &Job{RunID: "run-1", TeamName: "campaign-analytics-hub", Objective: "analyse spend"}

			require.NoError(t, store.Create(ctx, job))

			got, err := store.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, StatusPending, got.Status)
			assert.Equal(t, "campaign-analytics-hub", got.TeamName)
			assert.False(t, got.CreatedAt.IsZero())

			require.NoError(t, store.MarkRunning(ctx, "run-1"))
			got, err = store.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, StatusRunning, got.Status)

			result := json.RawMessage(`{"status":"completed"}`)
			require.NoError(t, store.MarkCompleted(ctx, "run-1", result))
			got, err = store.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, got.Status)
			assert.JSONEq(t, `{"status":"completed"}`, string(got.Result))
			assert.True(t, got.Status.Terminal())
		})
	}
}

func TestStore_MonotonicTransitions(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, &Job{RunID: "run-2", TeamName: "t"}))

			// pending 不能直接 completed
			assert.Error(t, store.MarkCompleted(ctx, "run-2", nil))

			require.NoError(t, store.MarkRunning(ctx, "run-2"))
			// running 不能再 running
			assert.Error(t, store.MarkRunning(ctx, "run-2"))

			require.NoError(t, store.MarkCompleted(ctx, "run-2", json.RawMessage(`{}`)))
			// 终态不可再迁移
			assert.Error(t, store.MarkFailed(ctx, "run-2", "late failure"))
			assert.Error(t, store.MarkRunning(ctx, "run-2"))
		})
	}
}

func TestStore_PendingToFailed(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, &Job{RunID: "run-3", TeamName: "t"}))

			// 编排级故障：pending 直达 failed
			require.NoError(t, store.MarkFailed(ctx, "run-3", "unknown team"))

			got, err := store.Get(ctx, "run-3")
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, got.Status)
			assert.Equal(t, "unknown team", got.ErrorDetail)
			assert.Empty(t, got.Result)
		})
	}
}

func TestStore_UnknownRunID(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "ghost")
			require.Error(t, err)
			assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

			err = store.MarkRunning(ctx, "ghost")
			require.Error(t, err)
			assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
		})
	}
}

func TestStore_DuplicateCreate(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, &Job{RunID: "dup", TeamName: "t"}))
			assert.Error(t, store.Create(ctx, &Job{RunID: "dup", TeamName: "t"}))
		})
	}
}

func TestStore_CreateValidation(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Create(context.Background(), &Job{}))
			assert.Error(t, store.Create(context.Background(), nil))
		})
	}
}

func TestGormStore_GetReturnsCopy(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := NewGormStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Job{RunID: "r", TeamName: "t"}))

	a, err := store.Get(ctx, "r")
	require.NoError(t, err)
	a.TeamName = "mutated"

	b, err := store.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "t", b.TeamName)
}
