package swarm

import (
	"time"

	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/types"
)

// SubTask 一个目标片段：绑定到选定团队中的一个角色。
// 由 Director 按运行创建，运行独占，合成后丢弃。
type SubTask struct {
	ID          string         `json:"id"`
	Seq         int            `json:"seq"`
	Role        team.AgentRole `json:"role"`
	Objective   string         `json:"objective"`
	Context     map[string]any `json:"context,omitempty"`
	Memory      []string       `json:"memory,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
}

// ResultStatus 专家结果状态
type ResultStatus string

const (
	ResultOK       ResultStatus = "ok"
	ResultFailed   ResultStatus = "failed"
	ResultTimedOut ResultStatus = "timed_out"
)

// SpecialistResult 一个专家的执行结果。ID 与 SubTask.ID 一一对应；
// 产生后不可变。失败与超时同样产出结果，绝不留空洞。
type SpecialistResult struct {
	ID         string        `json:"id"`
	Role       string        `json:"role"`
	Status     ResultStatus  `json:"status"`
	Output     string        `json:"output,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	ErrorMsg   string        `json:"error_msg,omitempty"`
	ToolTrace  []tool.Result `json:"tool_trace,omitempty"`
	Backend    string        `json:"backend,omitempty"`
	Usage      types.Usage   `json:"usage"`
	Latency    time.Duration `json:"latency"`
}

// OK 结果是否成功。
func (r *SpecialistResult) OK() bool { return r.Status == ResultOK }

// RunStatus 运行终态
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// Deliverable 一个成功专家产出的交付物。
type Deliverable struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RunResult 一次运行的最终结果，由 Synthesizer 产出一次，不可变。
// Deliverables 与 AgentOutputs 均按子任务声明顺序排列。
type RunResult struct {
	RunID           string             `json:"run_id"`
	TeamName        string             `json:"team_name"`
	Status          RunStatus          `json:"status"`
	Summary         string             `json:"summary"`
	Deliverables    []Deliverable      `json:"deliverables"`
	AgentOutputs    []SpecialistResult `json:"agent_outputs"`
	Recommendations []string           `json:"recommendations"`
	Usage           types.Usage        `json:"usage"`
	Latency         time.Duration      `json:"latency"`
}

// RunRequest 一次运行请求。Team 为空时按目标关键词路由。
type RunRequest struct {
	Objective string         `json:"objective"`
	Team      string         `json:"team,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	ThreadID  string         `json:"thread_id,omitempty"`
	Async     bool           `json:"async,omitempty"`
	MaxAgents int            `json:"max_agents,omitempty"`
}
