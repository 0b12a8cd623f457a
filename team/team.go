// Package team 定义团队（有序专家角色集合）与进程级团队注册表。
// 团队注册后不可变；同名重复注册时后注册者整体替换旧映射。
package team

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/types"
)

// Mode 团队协作模式
type Mode string

const (
	// ModeHierarchical 分层模式：编排角色优先，其余角色按权重排序
	ModeHierarchical Mode = "hierarchical"
	// ModeFlat 扁平模式：全部角色平级
	ModeFlat Mode = "flat"
)

// AgentRole 一个专家角色。Instructions 作为该角色的系统提示词注入，
// Tools 为允许调用的工具名单，Weight 参与 max_agents 裁剪时的优先级排序。
type AgentRole struct {
	Name         string   `json:"name" yaml:"name"`
	Instructions string   `json:"instructions" yaml:"instructions"`
	Tools        []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	Weight       float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Team 不可变团队定义。Roles 的声明顺序即结果呈现顺序。
type Team struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Mode        Mode              `json:"mode" yaml:"mode"`
	Roles       []AgentRole       `json:"roles" yaml:"roles"`
	Temperature float64           `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Role 按名查找角色。
func (t *Team) Role(name string) (AgentRole, bool) {
	for _, r := range t.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return AgentRole{}, false
}

// RoleNames 按声明顺序返回角色名。
func (t *Team) RoleNames() []string {
	out := make([]string, len(t.Roles))
	for i, r := range t.Roles {
		out[i] = r.Name
	}
	return out
}

// Validate 校验团队定义完整性。
func (t *Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("team name cannot be empty")
	}
	if len(t.Roles) == 0 {
		return fmt.Errorf("team %q has no roles", t.Name)
	}
	if t.Mode != ModeHierarchical && t.Mode != ModeFlat {
		return fmt.Errorf("team %q has invalid mode %q", t.Name, t.Mode)
	}
	seen := make(map[string]bool, len(t.Roles))
	for _, r := range t.Roles {
		if r.Name == "" {
			return fmt.Errorf("team %q has a role with empty name", t.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("team %q has duplicate role %q", t.Name, r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Registry 团队注册表。注册按名串行化，解析与列举并发安全。
type Registry struct {
	mu     sync.RWMutex
	teams  map[string]Team
	logger *zap.Logger
}

// NewRegistry 创建空注册表。
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		teams:  make(map[string]Team),
		logger: logger.With(zap.String("component", "team_registry")),
	}
}

// Register 注册团队。同名覆盖旧注册。
func (r *Registry) Register(t Team) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.teams[t.Name]; exists {
		r.logger.Info("team replaced", zap.String("team", t.Name))
	}
	r.teams[t.Name] = t
	return nil
}

// Resolve 按名解析团队。未知团队返回 UNKNOWN_TEAM。
func (r *Registry) Resolve(name string) (Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[name]
	if !ok {
		return Team{}, types.NewError(types.ErrUnknownTeam,
			fmt.Sprintf("team %q not registered", name)).WithHTTPStatus(404)
	}
	return t, nil
}

// List 返回全部已注册团队（按名排序）。
func (r *Registry) List() []Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names 返回全部团队名（按名排序）。
func (r *Registry) Names() []string {
	teams := r.List()
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.Name
	}
	return out
}
