package swarm

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Synthesizer 把专家结果合成为一个 RunResult。纯确定性：
// 交付物按子任务声明顺序组装；摘要点名未完成的角色及失败种类；
// 建议只来自 ok 结果。部分/全部失败是报告出来的数据，不是异常。
type Synthesizer struct {
	logger *zap.Logger
}

// NewSynthesizer 创建合成器。
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{logger: logger.With(zap.String("component", "synthesizer"))}
}

// Merge 合成最终结果。status 规则：全 ok → completed；
// 有 ok 有败 → partial；全败 → failed。
func (s *Synthesizer) Merge(runID, teamName string, subtasks []SubTask,
	results []SpecialistResult, latency time.Duration) *RunResult {

	out := &RunResult{
		RunID:        runID,
		TeamName:     teamName,
		Status:       runStatus(results),
		AgentOutputs: results,
		Latency:      latency,
	}

	var okOutputs, failures []string
	for _, r := range results {
		out.Usage.Add(r.Usage)
		if r.OK() {
			out.Deliverables = append(out.Deliverables, Deliverable{Role: r.Role, Content: r.Output})
			okOutputs = append(okOutputs, fmt.Sprintf("### %s\n%s", r.Role, condense(r.Output)))
			out.Recommendations = append(out.Recommendations, extractRecommendations(r.Output)...)
		} else {
			failures = append(failures, fmt.Sprintf("%s (%s: %s)", r.Role, r.Status, r.ErrorKind))
		}
	}

	var sb strings.Builder
	if len(okOutputs) > 0 {
		sb.WriteString(strings.Join(okOutputs, "\n\n"))
	}
	if len(failures) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Did not complete: %s.", strings.Join(failures, ", "))
	}
	out.Summary = sb.String()

	if out.Status != RunCompleted {
		s.logger.Warn("run did not fully complete",
			zap.String("run_id", runID),
			zap.String("status", string(out.Status)),
			zap.Strings("failures", failures))
	}
	return out
}

func runStatus(results []SpecialistResult) RunStatus {
	var ok, total int
	for _, r := range results {
		total++
		if r.OK() {
			ok++
		}
	}
	switch {
	case total == 0 || ok == 0:
		return RunFailed
	case ok == total:
		return RunCompleted
	default:
		return RunPartial
	}
}

// condense 截取输出的头部作摘要段，完整输出在 Deliverables 中。
// 截断点回退到符文边界，CJK 输出不会被切出半个字符。
func condense(output string) string {
	const limit = 600
	output = strings.TrimSpace(output)
	if len(output) <= limit {
		return output
	}
	end := limit
	for end > 0 && !utf8.RuneStart(output[end]) {
		end--
	}
	cut := output[:end]
	if idx := strings.LastIndexByte(cut, '\n'); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "\n[...]"
}

// extractRecommendations 从 ok 输出里提取建议要点：
// "Recommendations" 小节下的列表项。没有该小节则不产出建议。
func extractRecommendations(output string) []string {
	var out []string
	inSection := false
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			heading := strings.ToLower(strings.TrimLeft(trimmed, "# "))
			inSection = strings.HasPrefix(heading, "recommendation")
			continue
		}
		if !inSection {
			continue
		}
		if rec, ok := strings.CutPrefix(trimmed, "- "); ok {
			out = append(out, strings.TrimSpace(rec))
		} else if rec, ok := strings.CutPrefix(trimmed, "* "); ok {
			out = append(out, strings.TrimSpace(rec))
		}
	}
	return out
}
