// Package tool 提供具名工具注册表。工具是独立于核心注册的具名函数
// （营销计算器、CRM/分析连接器等），专家执行器通过注册表按名调用。
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/types"
)

// Func 工具实现。args 为 JSON 对象参数，返回值必须可 JSON 序列化。
type Func func(ctx context.Context, args json.RawMessage) (any, error)

// Tool 一个已注册的工具
type Tool struct {
	Schema types.ToolSchema
	Fn     Func
}

// Result 一次工具调用的结果
type Result struct {
	Name   string `json:"name"`
	CallID string `json:"call_id,omitempty"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Registry 工具注册表。注册与调用并发安全；同名重复注册时后注册者生效。
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry 创建空注册表。
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With(zap.String("component", "tool_registry")),
	}
}

// Register 注册一个工具。
func (r *Registry) Register(schema types.ToolSchema, fn Func) error {
	if schema.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("tool %q has nil func", schema.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[schema.Name]; exists {
		r.logger.Info("tool re-registered", zap.String("tool", schema.Name))
	}
	r.tools[schema.Name] = Tool{Schema: schema, Fn: fn}
	return nil
}

// Invoke 按名调用工具。未注册的名字返回 NOT_FOUND。
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("tool %q not registered", name))
	}

	out, err := t.Fn(ctx, args)
	if err != nil {
		return nil, types.NewError(types.ErrToolExecution, fmt.Sprintf("tool %q failed", name)).WithCause(err)
	}
	return out, nil
}

// Has 判断工具是否已注册。
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Schemas 返回指定名字集合的 schema；names 为空时返回全部。
// 未注册的名字被跳过。结果按名称排序，保证 prompt 构造确定性。
func (r *Registry) Schemas(names []string) []types.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []types.ToolSchema
	if len(names) == 0 {
		for _, t := range r.tools {
			out = append(out, t.Schema)
		}
	} else {
		for _, name := range names {
			if t, ok := r.tools[name]; ok {
				out = append(out, t.Schema)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names 返回全部已注册工具名（排序后）。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
