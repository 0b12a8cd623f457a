package marketing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// ICP 目标区间与权重表
const (
	idealCompanySizeMin = 50
	idealCompanySizeMax = 5000
)

var seniorityWeights = map[string]float64{
	"C-Suite":                1.0,
	"VP":                     0.9,
	"Director":               0.75,
	"Manager":                0.55,
	"Individual Contributor": 0.3,
	"Unknown":                0.2,
}

var budgetWeights = map[string]float64{
	"<$10k":      0.1,
	"$10k-$50k":  0.4,
	"$50k-$200k": 0.75,
	"$200k-$1M":  0.95,
	">$1M":       1.0,
	"Unknown":    0.15,
}

type leadScoringArgs struct {
	CalcType               string    `json:"calc_type"`
	CompanySize            int       `json:"company_size"`
	Industry               string    `json:"industry"`
	TitleSeniority         string    `json:"title_seniority"`
	EngagementSignals      int       `json:"engagement_signals"`
	BudgetRange            string    `json:"budget_range"`
	PainScore              int       `json:"pain_score"`
	TimelineMonths         float64   `json:"timeline_months"`
	DecisionMakerConfirmed bool      `json:"decision_maker_confirmed"`
	ChampionIdentified     bool      `json:"champion_identified"`
	CurrentMonthQualified  int       `json:"current_month_qualified"`
	PreviousMonthQualified int       `json:"previous_month_qualified"`
	StageWinRates          []float64 `json:"stage_win_rates"`
	DaysInStage            float64   `json:"days_in_stage"`
}

// LeadScoring 实现 lead_scoring_calc 工具。
func LeadScoring(_ context.Context, raw json.RawMessage) (any, error) {
	var args leadScoringArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	switch args.CalcType {
	case "ilt_score":
		return iltScore(args), nil
	case "bant_qualify":
		return bantQualify(args), nil
	case "meddic_score":
		return meddicScore(args), nil
	case "lead_velocity_rate":
		return leadVelocityRate(args), nil
	case "conversion_probability":
		return conversionProbability(args), nil
	default:
		return nil, fmt.Errorf("unknown calc_type %q: valid: ilt_score, bant_qualify, meddic_score, lead_velocity_rate, conversion_probability", args.CalcType)
	}
}

func seniorityWeight(s string) float64 {
	if w, ok := seniorityWeights[s]; ok {
		return w
	}
	return 0.2
}

func budgetWeight(s string) float64 {
	if w, ok := budgetWeights[s]; ok {
		return w
	}
	return 0.15
}

// iltScore ILT 评分：公司画像 40 分 + 职级 35 分 + 互动信号 25 分。
func iltScore(args leadScoringArgs) map[string]any {
	var firmographic float64
	switch {
	case args.CompanySize >= idealCompanySizeMin && args.CompanySize <= idealCompanySizeMax:
		firmographic = 40.0
	case args.CompanySize > idealCompanySizeMax:
		firmographic = 35.0 // 企业级——依然优质，但需要不同的销售打法
	case args.CompanySize > 10:
		firmographic = 20.0
	default:
		firmographic = 5.0
	}

	seniorityScore := seniorityWeight(args.TitleSeniority) * 35.0
	// 对数衰减：互动信号边际收益递减
	engagementScore := math.Min(25.0, math.Log1p(float64(args.EngagementSignals))*5.5)

	score := round1(math.Min(100.0, firmographic+seniorityScore+engagementScore))

	var tier, action string
	switch {
	case score >= 75:
		tier, action = "A — Hot", "Route to AE immediately. Add to Tier-1 sequence."
	case score >= 55:
		tier, action = "B — Warm", "Enroll in nurture sequence. SDR follow-up within 24 h."
	case score >= 35:
		tier, action = "C — Cool", "Long-nurture sequence. Marketing-qualified only."
	default:
		tier, action = "D — Unqualified", "Do not work. Return to awareness campaigns."
	}

	return map[string]any{
		"calc_type": "ilt_score",
		"ilt_score": score,
		"tier":      tier,
		"breakdown": map[string]any{
			"firmographic_fit_40pts":    round1(firmographic),
			"title_seniority_35pts":     round1(seniorityScore),
			"engagement_signals_25pts":  round1(engagementScore),
		},
		"recommended_action": action,
	}
}

// bantQualify BANT 四维各 25 分，总分 ≥60 视为 SQL。
func bantQualify(args leadScoringArgs) map[string]any {
	painScore := clampInt(args.PainScore, 0, 10)
	timeline := args.TimelineMonths
	if timeline == 0 {
		timeline = 12
	}

	bScore := budgetWeight(args.BudgetRange) * 25
	aScore := seniorityWeight(args.TitleSeniority) * 25
	nScore := float64(painScore) / 10.0 * 25

	var tScore float64
	switch {
	case timeline <= 1:
		tScore = 25.0
	case timeline <= 3:
		tScore = 20.0
	case timeline <= 6:
		tScore = 14.0
	case timeline <= 12:
		tScore = 8.0
	default:
		tScore = 3.0
	}

	total := round1(bScore + aScore + nScore + tScore)
	qualified := total >= 60

	var gaps []string
	if bScore < 10 {
		gaps = append(gaps, "Budget clarity")
	}
	if aScore < 12 {
		gaps = append(gaps, "Economic buyer confirmed")
	}
	if nScore < 12 {
		gaps = append(gaps, "Clear pain identified")
	}
	if tScore < 8 {
		gaps = append(gaps, "Active buying timeline")
	}

	status := "MQL — Needs further nurturing"
	next := "Schedule discovery call to map stakeholders and confirm budget."
	if qualified {
		status = "SQL — Sales Qualified Lead"
		next = "Progress to demo / proposal. Assign AE and create deal in CRM."
	}

	return map[string]any{
		"calc_type":            "bant_qualify",
		"bant_total_score":     total,
		"qualified":            qualified,
		"qualification_status": status,
		"breakdown": map[string]any{
			"Budget_25pts":    round1(bScore),
			"Authority_25pts": round1(aScore),
			"Need_25pts":      round1(nScore),
			"Timeline_25pts":  round1(tScore),
		},
		"gaps":       gaps,
		"next_steps": next,
	}
}

// meddicScore MEDDIC 六维评分（每维 16-17 分）。
func meddicScore(args leadScoringArgs) map[string]any {
	painScore := clampInt(args.PainScore, 0, 10)
	engagement := float64(args.EngagementSignals)

	metricsScore := round1(float64(painScore) / 10 * 17)
	econBuyerScore := 4.0
	if args.DecisionMakerConfirmed {
		econBuyerScore = 17.0
	}
	decisionCriteria := round1(math.Min(17, engagement*1.2))
	decisionProcess := round1(math.Min(17, engagement*0.9))
	identifyPainScore := round1(float64(painScore) / 10 * 16)
	championScore := 3.0
	if args.ChampionIdentified {
		championScore = 16.0
	}

	total := math.Min(100, round1(metricsScore+econBuyerScore+decisionCriteria+
		decisionProcess+identifyPainScore+championScore))

	confidence := "Low"
	switch {
	case total >= 70:
		confidence = "High"
	case total >= 45:
		confidence = "Medium"
	}

	var risks []string
	if econBuyerScore < 10 {
		risks = append(risks, "No economic buyer confirmed")
	}
	if identifyPainScore < 8 {
		risks = append(risks, "Weak pain articulation")
	}
	if championScore < 8 {
		risks = append(risks, "No internal champion")
	}
	if decisionProcess < 8 {
		risks = append(risks, "Unclear decision process")
	}

	return map[string]any{
		"calc_type":       "meddic_score",
		"meddic_total":    total,
		"deal_confidence": confidence,
		"breakdown": map[string]any{
			"Metrics":           metricsScore,
			"Economic_Buyer":    econBuyerScore,
			"Decision_Criteria": decisionCriteria,
			"Decision_Process":  decisionProcess,
			"Identify_Pain":     identifyPainScore,
			"Champion":          championScore,
		},
		"risks": risks,
	}
}

func leadVelocityRate(args leadScoringArgs) map[string]any {
	current, previous := args.CurrentMonthQualified, args.PreviousMonthQualified

	var lvr float64
	if previous == 0 {
		lvr = 100.0
	} else {
		lvr = round2(float64(current-previous) / float64(previous) * 100)
	}

	trend := "Flat"
	switch {
	case lvr > 0:
		trend = "Growing"
	case lvr < 0:
		trend = "Declining"
	}

	return map[string]any{
		"calc_type":      "lead_velocity_rate",
		"lvr_percent":    lvr,
		"trend":          trend,
		"current_month":  current,
		"previous_month": previous,
		"delta":          current - previous,
	}
}

// conversionProbability 阶段胜率连乘 × 滞龄衰减 × 痛点系数。
func conversionProbability(args leadScoringArgs) map[string]any {
	rates := args.StageWinRates
	if len(rates) == 0 {
		rates = []float64{0.4, 0.6, 0.75, 0.85}
	}
	painScore := args.PainScore
	if painScore == 0 {
		painScore = 5
	}
	painScore = clampInt(painScore, 0, 10)
	days := args.DaysInStage
	if days == 0 {
		days = 10
	}

	baseProb := 1.0
	for _, rate := range rates {
		baseProb *= math.Max(0.0, math.Min(1.0, rate))
	}

	// 滞留超过 30 天后概率开始衰减，下限 0.5
	ageDecay := math.Max(0.5, 1.0-math.Max(0, days-30)*0.005)
	painMultiplier := 0.7 + float64(painScore)/10*0.3

	adjusted := round1(baseProb * ageDecay * painMultiplier * 100)
	adjusted = math.Min(99.0, math.Max(1.0, adjusted))

	risk := "High"
	switch {
	case adjusted >= 65:
		risk = "Low"
	case adjusted >= 35:
		risk = "Medium"
	}

	return map[string]any{
		"calc_type":                  "conversion_probability",
		"conversion_probability_pct": adjusted,
		"risk_level":                 risk,
		"base_probability_pct":       round1(baseProb * 100),
		"age_decay_factor":           round3(ageDecay),
		"pain_multiplier":            round3(painMultiplier),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
