package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedCheck struct {
	name string
	err  error
}

func (c namedCheck) Name() string                    { return c.name }
func (c namedCheck) Check(ctx context.Context) error { return c.err }

func TestHandleHealthz_AlwaysOK(t *testing.T) {
	h := NewHealthHandler(nil)
	h.RegisterCheck(namedCheck{name: "backend", err: errors.New("down")})

	rec := httptest.NewRecorder()
	h.HandleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// 存活探针不依赖下游
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestHandleReady_AllPass(t *testing.T) {
	h := NewHealthHandler(nil)
	h.RegisterCheck(namedCheck{name: "backend"})
	h.RegisterCheck(namedCheck{name: "redis"})

	rec := httptest.NewRecorder()
	h.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend"`)
	assert.Contains(t, rec.Body.String(), `"pass"`)
}

func TestHandleReady_FailureDegrades(t *testing.T) {
	h := NewHealthHandler(nil)
	h.RegisterCheck(namedCheck{name: "backend"})
	h.RegisterCheck(namedCheck{name: "redis", err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestHandleVersion(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.HandleVersion("1.2.3", "2026-01-01", "abcdef")(rec,
		httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3")
	assert.Contains(t, rec.Body.String(), "abcdef")
}
