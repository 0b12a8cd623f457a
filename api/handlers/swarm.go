package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vibecaas/nanoswarm/jobs"
	"github.com/vibecaas/nanoswarm/swarm"
	"github.com/vibecaas/nanoswarm/team"
	"github.com/vibecaas/nanoswarm/types"
)

// =============================================================================
// 🐝 Swarm Handler
// =============================================================================

// Swarm 是编排器暴露给 HTTP 层的能力面
type Swarm interface {
	Run(ctx context.Context, req swarm.RunRequest) (*swarm.RunResult, error)
	Submit(ctx context.Context, req swarm.RunRequest) (string, error)
	GetStatus(ctx context.Context, runID string) (*jobs.Job, error)
	ListTeams() []team.Team
	GetTeam(name string) (team.Team, error)
}

// SwarmHandler 运行与团队查询的 HTTP 处理器
type SwarmHandler struct {
	svc    Swarm
	logger *zap.Logger
}

// NewSwarmHandler 创建 Swarm 处理器
func NewSwarmHandler(svc Swarm, logger *zap.Logger) *SwarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwarmHandler{svc: svc, logger: logger.With(zap.String("component", "swarm_handler"))}
}

// submitResponse 异步提交的应答体
type submitResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// teamSummary 团队列表项
type teamSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
	AgentCount  int    `json:"agent_count"`
	Category    string `json:"category,omitempty"`
}

// HandleRun 处理 POST /api/v1/swarm/run。
// async=false 阻塞到合成完成；async=true 立即返回 run_id。
func (h *SwarmHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req swarm.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"request body is not valid JSON", h.logger)
		return
	}
	if strings.TrimSpace(req.Objective) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"objective is required", h.logger)
		return
	}

	if req.Async {
		runID, err := h.svc.Submit(r.Context(), req)
		if err != nil {
			WriteError(w, err, h.logger)
			return
		}
		WriteAccepted(w, submitResponse{RunID: runID, Status: string(jobs.StatusPending)})
		return
	}

	result, err := h.svc.Run(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result)
}

// HandleGetRun 处理 GET /api/v1/swarm/runs/{id}
func (h *SwarmHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"run id is required", h.logger)
		return
	}

	job, err := h.svc.GetStatus(r.Context(), runID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, job)
}

// HandleListTeams 处理 GET /api/v1/swarm/teams
func (h *SwarmHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams := h.svc.ListTeams()
	out := make([]teamSummary, 0, len(teams))
	for _, tm := range teams {
		out = append(out, teamSummary{
			Name:        tm.Name,
			Description: tm.Description,
			Mode:        string(tm.Mode),
			AgentCount:  len(tm.Roles),
			Category:    tm.Metadata["category"],
		})
	}
	WriteSuccess(w, out)
}

// HandleGetTeam 处理 GET /api/v1/swarm/teams/{name}
func (h *SwarmHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tm, err := h.svc.GetTeam(name)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, tm)
}

// topologyTeam 拓扑视图里的团队节点
type topologyTeam struct {
	Name  string         `json:"name"`
	Mode  string         `json:"mode"`
	Roles []topologyRole `json:"roles"`
}

type topologyRole struct {
	Name   string   `json:"name"`
	Weight float64  `json:"weight"`
	Tools  []string `json:"tools,omitempty"`
}

// topologyResponse 全量拓扑：团队、角色、工具边
type topologyResponse struct {
	DefaultTeam string         `json:"default_team"`
	Teams       []topologyTeam `json:"teams"`
}

// HandleTopology 处理 GET /api/v1/swarm/topology
func (h *SwarmHandler) HandleTopology(w http.ResponseWriter, r *http.Request) {
	teams := h.svc.ListTeams()
	out := topologyResponse{
		DefaultTeam: team.DefaultTeam,
		Teams:       make([]topologyTeam, 0, len(teams)),
	}
	for _, tm := range teams {
		node := topologyTeam{
			Name:  tm.Name,
			Mode:  string(tm.Mode),
			Roles: make([]topologyRole, 0, len(tm.Roles)),
		}
		for _, role := range tm.Roles {
			node.Roles = append(node.Roles, topologyRole{
				Name:   role.Name,
				Weight: role.Weight,
				Tools:  role.Tools,
			})
		}
		out.Teams = append(out.Teams, node)
	}
	WriteSuccess(w, out)
}
