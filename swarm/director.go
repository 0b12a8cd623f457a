package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/llm"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/types"
)

// DefaultMaxAgents 单次运行的默认专家数上限
const DefaultMaxAgents = 5

// Director 将目标分解为子任务。分解有两条路径：
// 静态切分（每个角色拿到完整目标 + 自身专精指令）和
// 可选的后端辅助分配（一次推理调用提议分工，校验失败静默回退静态切分）。
// 分解绝不能成为整体失败的单点。
type Director struct {
	teams    *team.Registry
	provider llm.Provider
	logger   *zap.Logger
}

// NewDirector 创建 Director。provider 为 nil 时只走静态切分。
func NewDirector(teams *team.Registry, provider llm.Provider, logger *zap.Logger) *Director {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Director{
		teams:    teams,
		provider: provider,
		logger:   logger.With(zap.String("component", "director")),
	}
}

// Decompose 解析团队并产出有序子任务序列。
// maxAgents 非正时取 DefaultMaxAgents；角色多于上限时按权重降序
// （同权重按声明顺序）稳定裁剪。未知团队返回 UNKNOWN_TEAM。
func (d *Director) Decompose(ctx context.Context, objective, teamName string,
	runCtx map[string]any, memory []string, maxAgents int) ([]SubTask, team.Team, error) {

	if strings.TrimSpace(objective) == "" {
		return nil, team.Team{}, types.NewError(types.ErrInvalidRequest,
			"objective cannot be empty").WithHTTPStatus(400)
	}

	tm, err := d.teams.Resolve(teamName)
	if err != nil {
		return nil, team.Team{}, err
	}

	if maxAgents <= 0 {
		maxAgents = DefaultMaxAgents
	}
	roles := selectRoles(tm.Roles, maxAgents)

	allocations := d.allocate(ctx, objective, tm, roles)

	subtasks := make([]SubTask, len(roles))
	for i, role := range roles {
		taskObjective := objective
		if alloc, ok := allocations[role.Name]; ok && alloc != "" {
			taskObjective = alloc
		}
		subtasks[i] = SubTask{
			ID:          uuid.New().String(),
			Seq:         i,
			Role:        role,
			Objective:   taskObjective,
			Context:     runCtx,
			Memory:      memory,
			Temperature: tm.Temperature,
			MaxTokens:   tm.MaxTokens,
		}
	}
	return subtasks, tm, nil
}

// selectRoles 按权重降序稳定选择至多 maxAgents 个角色。
// 稳定排序保证同权重角色维持声明顺序，选择结果可复现。
func selectRoles(roles []team.AgentRole, maxAgents int) []team.AgentRole {
	if len(roles) <= maxAgents {
		out := make([]team.AgentRole, len(roles))
		copy(out, roles)
		return out
	}

	type indexed struct {
		role team.AgentRole
		pos  int
	}
	ranked := make([]indexed, len(roles))
	for i, r := range roles {
		ranked[i] = indexed{role: r, pos: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].role.Weight > ranked[j].role.Weight
	})
	ranked = ranked[:maxAgents]

	// 裁剪后恢复声明顺序，保持呈现顺序稳定
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].pos < ranked[j].pos })

	out := make([]team.AgentRole, len(ranked))
	for i, r := range ranked {
		out[i] = r.role
	}
	return out
}

type allocationProposal struct {
	Allocations []struct {
		Role string `json:"role"`
		Task string `json:"task"`
	} `json:"allocations"`
}

// allocate 向后端请求一次分工提议。任何失败（后端错误、不可解析、
// 含未知角色）都静默回退到静态切分：返回空映射，仅记日志。
func (d *Director) allocate(ctx context.Context, objective string,
	tm team.Team, roles []team.AgentRole) map[string]string {

	if d.provider == nil || len(roles) < 2 {
		return nil
	}

	var sb strings.Builder
	for _, r := range roles {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Name, r.Instructions)
	}

	req := &llm.ChatRequest{
		Messages: []types.Message{
			{Role: types.RoleSystem, Content: "You split one objective into per-role sub-tasks for a specialist team. " +
				"Respond with JSON only: {\"allocations\":[{\"role\":\"<role name>\",\"task\":\"<sub-task>\"}]}. " +
				"Use only the listed role names."},
			{Role: types.RoleUser, Content: fmt.Sprintf("Objective:\n%s\n\nTeam %s roles:\n%s", objective, tm.Name, sb.String())},
		},
		Temperature: 0.0,
		MaxTokens:   1024,
	}

	resp, err := d.provider.Complete(ctx, req)
	if err != nil {
		d.logger.Warn("allocation call failed, falling back to static split",
			zap.String("team", tm.Name), zap.Error(err))
		return nil
	}

	raw := strings.TrimSpace(resp.First().Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var proposal allocationProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil || len(proposal.Allocations) == 0 {
		d.logger.Warn("allocation proposal unparseable, falling back to static split",
			zap.String("team", tm.Name))
		return nil
	}

	known := make(map[string]bool, len(roles))
	for _, r := range roles {
		known[r.Name] = true
	}

	out := make(map[string]string, len(proposal.Allocations))
	for _, a := range proposal.Allocations {
		if !known[a.Role] {
			d.logger.Warn("allocation names unknown role, falling back to static split",
				zap.String("team", tm.Name), zap.String("role", a.Role))
			return nil
		}
		out[a.Role] = strings.TrimSpace(a.Task)
	}
	return out
}
