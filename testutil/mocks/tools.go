// 工具注册表的测试辅助。
//
// ToolRegistryBuilder 构造预置了具名桩工具的真实 tool.Registry，
// 并记录每次调用，便于断言专家执行器的工具交互。
package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/types"
)

// ToolInvocation 记录单次工具调用
type ToolInvocation struct {
	Name  string
	Args  json.RawMessage
	Error error
}

// ToolRegistryBuilder 按 Builder 模式组装测试用工具注册表
type ToolRegistryBuilder struct {
	mu      sync.Mutex
	entries []toolEntry
	calls   []ToolInvocation
}

type toolEntry struct {
	schema types.ToolSchema
	fn     tool.Func
}

// NewToolRegistry 创建新的 ToolRegistryBuilder
func NewToolRegistry() *ToolRegistryBuilder {
	return &ToolRegistryBuilder{}
}

// WithTool 注册自定义工具函数
func (b *ToolRegistryBuilder) WithTool(name string, fn tool.Func) *ToolRegistryBuilder {
	return b.WithToolSchema(defaultSchema(name), fn)
}

// WithResult 注册总是返回固定结果的工具
func (b *ToolRegistryBuilder) WithResult(name string, result any) *ToolRegistryBuilder {
	return b.WithTool(name, func(context.Context, json.RawMessage) (any, error) {
		return result, nil
	})
}

// WithError 注册总是失败的工具
func (b *ToolRegistryBuilder) WithError(name string, err error) *ToolRegistryBuilder {
	return b.WithTool(name, func(context.Context, json.RawMessage) (any, error) {
		return nil, err
	})
}

// WithToolSchema 注册带完整 Schema 的工具
func (b *ToolRegistryBuilder) WithToolSchema(schema types.ToolSchema, fn tool.Func) *ToolRegistryBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, toolEntry{schema: schema, fn: fn})
	return b
}

// Build 构造注册表。所有工具都套上调用记录包装。
func (b *ToolRegistryBuilder) Build(logger *zap.Logger) (*tool.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := tool.NewRegistry(logger)

	b.mu.Lock()
	entries := make([]toolEntry, len(b.entries))
	copy(entries, b.entries)
	b.mu.Unlock()

	for _, e := range entries {
		e := e
		wrapped := func(ctx context.Context, args json.RawMessage) (any, error) {
			out, err := e.fn(ctx, args)
			b.mu.Lock()
			b.calls = append(b.calls, ToolInvocation{Name: e.schema.Name, Args: args, Error: err})
			b.mu.Unlock()
			return out, err
		}
		if err := reg.Register(e.schema, wrapped); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Calls 返回全部工具调用记录的拷贝
func (b *ToolRegistryBuilder) Calls() []ToolInvocation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ToolInvocation, len(b.calls))
	copy(out, b.calls)
	return out
}

func defaultSchema(name string) types.ToolSchema {
	params, _ := json.Marshal(map[string]any{"type": "object"})
	return types.ToolSchema{
		Name:        name,
		Description: "Mock tool: " + name,
		Parameters:  params,
	}
}
