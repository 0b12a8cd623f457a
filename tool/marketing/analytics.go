package marketing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

type analyticsArgs struct {
	CalcType                 string  `json:"calc_type"`
	AdSpend                  float64 `json:"ad_spend"`
	NewCustomers             int     `json:"new_customers"`
	RevenueAttributed        float64 `json:"revenue_attributed"`
	AverageOrderValue        float64 `json:"average_order_value"`
	GrossMarginPct           float64 `json:"gross_margin_pct"`
	MonthlyChurnRatePct      float64 `json:"monthly_churn_rate_pct"`
	AveragePurchaseFrequency float64 `json:"average_purchase_frequency"`
	CurrentMRR               float64 `json:"current_mrr"`
	PreviousMRR              float64 `json:"previous_mrr"`
	ChurnedCustomers         int     `json:"churned_customers"`
	StartingCustomers        int     `json:"starting_customers"`
	Promoters                int     `json:"promoters"`
	Detractors               int     `json:"detractors"`
	TotalRespondents         int     `json:"total_respondents"`
	SalesOverheadPct         float64 `json:"sales_overhead_pct"`
}

// CampaignAnalytics 实现 campaign_analytics_calc 工具。
func CampaignAnalytics(_ context.Context, raw json.RawMessage) (any, error) {
	var args analyticsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	switch args.CalcType {
	case "cac":
		return calcCAC(args), nil
	case "ltv":
		return calcLTV(args), nil
	case "roas":
		return calcROAS(args), nil
	case "payback_period":
		return calcPaybackPeriod(args)
	case "mrr_growth":
		return calcMRRGrowth(args), nil
	case "churn_rate":
		return calcChurnRate(args), nil
	case "nps_score":
		return calcNPS(args), nil
	default:
		return nil, fmt.Errorf("unknown calc_type %q: valid: cac, ltv, roas, payback_period, mrr_growth, churn_rate, nps_score", args.CalcType)
	}
}

func calcCAC(args analyticsArgs) map[string]any {
	newCustomers := args.NewCustomers
	if newCustomers < 1 {
		newCustomers = 1
	}

	marketingCAC := args.AdSpend / float64(newCustomers)
	fullyLoadedCAC := marketingCAC * (1 + args.SalesOverheadPct/100)

	return map[string]any{
		"calc_type":        "cac",
		"marketing_cac":    round2(marketingCAC),
		"fully_loaded_cac": round2(fullyLoadedCAC),
		"total_spend":      args.AdSpend,
		"new_customers":    newCustomers,
		"benchmark_note":   "Compare to LTV: healthy ratio is LTV:CAC >= 3:1.",
		"optimisation_tip": "Reduce CAC by improving conversion rate at each funnel stage, increasing organic channels, and optimising paid media targeting.",
	}
}

func calcLTV(args analyticsArgs) map[string]any {
	aov := args.AverageOrderValue
	freq := args.AveragePurchaseFrequency
	if freq == 0 {
		freq = 1
	}
	churnPct := args.MonthlyChurnRatePct
	if churnPct == 0 {
		churnPct = 5
	}
	churn := math.Max(0.001, churnPct/100)
	marginPct := args.GrossMarginPct
	if marginPct == 0 {
		marginPct = 70
	}
	margin := marginPct / 100

	lifespanMonths := 1 / churn
	annualRevenue := aov * freq
	monthlyRevenue := annualRevenue / 12

	return map[string]any{
		"calc_type":                    "ltv",
		"ltv_margin_adjusted":          round2(monthlyRevenue * margin * lifespanMonths),
		"ltv_simple":                   round2(aov * freq * lifespanMonths / 12),
		"avg_customer_lifespan_months": round1(lifespanMonths),
		"annual_revenue_per_customer":  round2(annualRevenue),
		"inputs": map[string]any{
			"aov":               aov,
			"freq_per_year":     freq,
			"monthly_churn_pct": churnPct,
			"gross_margin_pct":  marginPct,
		},
		"note": "Reduce churn by 1% to significantly increase LTV. Focus on onboarding and CS.",
	}
}

func calcROAS(args analyticsArgs) map[string]any {
	spend := math.Max(0.01, args.AdSpend)
	revenue := args.RevenueAttributed
	marginPct := args.GrossMarginPct
	if marginPct == 0 {
		marginPct = 70
	}
	margin := marginPct / 100

	roas := round2(revenue / spend)
	mroas := round2(revenue * margin / spend)

	var rating, action string
	switch {
	case roas >= 4:
		rating, action = "Excellent", "Scale this campaign. Strong positive ROI."
	case roas >= 2:
		rating, action = "Good", "Performing above break-even. Test scaling budget 20%."
	case roas >= 1:
		rating, action = "Break-even", "Covering spend but not profitable after margin. Optimise creative/targeting."
	default:
		rating, action = "Negative ROI", "Pause and audit creative, audience, landing page, and offer."
	}

	return map[string]any{
		"calc_type":            "roas",
		"roas":                 roas,
		"margin_adjusted_roas": mroas,
		"revenue":              revenue,
		"spend":                spend,
		"rating":               rating,
		"action":               action,
		"breakeven_roas":       round2(1 / margin),
	}
}

func calcPaybackPeriod(args analyticsArgs) (map[string]any, error) {
	newCustomers := args.NewCustomers
	if newCustomers < 1 {
		newCustomers = 1
	}
	freq := args.AveragePurchaseFrequency
	if freq == 0 {
		freq = 12
	}
	marginPct := args.GrossMarginPct
	if marginPct == 0 {
		marginPct = 70
	}

	cac := args.AdSpend / float64(newCustomers)
	monthlyGrossProfit := (args.AverageOrderValue * freq / 12) * (marginPct / 100)
	if monthlyGrossProfit <= 0 {
		return nil, fmt.Errorf("monthly gross profit must be > 0 to calculate payback period")
	}

	paybackMonths := round1(cac / monthlyGrossProfit)
	rating := "Needs improvement"
	switch {
	case paybackMonths <= 6:
		rating = "Excellent"
	case paybackMonths <= 12:
		rating = "Good"
	}

	return map[string]any{
		"calc_type":                         "payback_period",
		"payback_period_months":             paybackMonths,
		"cac":                               round2(cac),
		"monthly_gross_profit_per_customer": round2(monthlyGrossProfit),
		"rating":                            rating,
		"benchmark":                         "SaaS benchmark: <12 months is healthy; <6 months is exceptional.",
	}, nil
}

func calcMRRGrowth(args analyticsArgs) map[string]any {
	current := args.CurrentMRR
	previous := math.Max(0.01, args.PreviousMRR)

	growthPct := round2((current - previous) / previous * 100)

	trend := "Flat"
	switch {
	case growthPct > 0:
		trend = "Growing"
	case growthPct < 0:
		trend = "Declining"
	}

	return map[string]any{
		"calc_type":      "mrr_growth",
		"mrr_growth_pct": growthPct,
		"current_mrr":    current,
		"previous_mrr":   previous,
		"arr_annualised": round2(current * 12),
		"trend":          trend,
		"benchmark":      "Healthy SaaS growth: 10-15% MoM in early stage; 5-8% in growth stage.",
	}
}

func calcChurnRate(args analyticsArgs) map[string]any {
	starting := args.StartingCustomers
	if starting < 1 {
		starting = 1
	}

	churnPct := round2(float64(args.ChurnedCustomers) / float64(starting) * 100)
	retentionPct := round2(100 - churnPct)
	lifespanMonths := round1(100 / math.Max(churnPct, 0.1))

	actions := []string{"Maintain retention programmes and monitor NPS trend."}
	if churnPct > 3 {
		actions = []string{
			"Analyse exit surveys to identify top churn reasons.",
			"Implement 30/60/90-day onboarding health checks.",
			"Create proactive CSM playbooks for at-risk accounts.",
		}
	}

	return map[string]any{
		"calc_type":                   "churn_rate",
		"monthly_churn_pct":           churnPct,
		"monthly_retention_pct":       retentionPct,
		"implied_avg_lifespan_months": lifespanMonths,
		"churned_customers":           args.ChurnedCustomers,
		"starting_customers":          starting,
		"benchmark":                   "World-class SaaS: <2% monthly churn. Good: 2-5%. Needs work: >5%.",
		"actions":                     actions,
	}
}

func calcNPS(args analyticsArgs) map[string]any {
	total := args.TotalRespondents
	if total < 1 {
		total = 1
	}

	nps := round1(float64(args.Promoters-args.Detractors) / float64(total) * 100)
	passives := total - args.Promoters - args.Detractors

	category := "Needs improvement (<30)"
	switch {
	case nps > 70:
		category = "World-class (>70)"
	case nps > 50:
		category = "Excellent (50-70)"
	case nps > 30:
		category = "Good (30-50)"
	}

	return map[string]any{
		"calc_type":         "nps_score",
		"nps_score":         nps,
		"promoters":         args.Promoters,
		"passives":          passives,
		"detractors":        args.Detractors,
		"total_respondents": total,
		"promoter_pct":      round1(float64(args.Promoters) / float64(total) * 100),
		"detractor_pct":     round1(float64(args.Detractors) / float64(total) * 100),
		"category":          category,
		"benchmark":         "B2B SaaS average NPS: 30-40. Top-quartile: >50.",
	}
}
