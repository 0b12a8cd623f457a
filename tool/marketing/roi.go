package marketing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

type channelInvestment struct {
	Channel    string  `json:"channel"`
	Investment float64 `json:"investment"`
	Revenue    float64 `json:"revenue"`
}

type roiArgs struct {
	CalcType               string              `json:"calc_type"`
	Investment             float64             `json:"investment"`
	RevenueAttributed      float64             `json:"revenue_attributed"`
	TimePeriodMonths       int                 `json:"time_period_months"`
	AttributionModel       string              `json:"attribution_model"`
	GrossMarginPct         float64             `json:"gross_margin_pct"`
	OrganicTrafficIncrease int                 `json:"organic_traffic_increase"`
	ConversionRatePct      float64             `json:"conversion_rate_pct"`
	AverageOrderValue      float64             `json:"average_order_value"`
	ContentPiecesProduced  int                 `json:"content_pieces_produced"`
	InfluencerReach        int                 `json:"influencer_reach"`
	EventAttendees         int                 `json:"event_attendees"`
	LeadsFromEvent         int                 `json:"leads_from_event"`
	ChannelInvestments     []channelInvestment `json:"channel_investments"`
}

// ROICalculator 实现 roi_calculator 工具：单渠道 ROI 与混合投放 ROI。
func ROICalculator(_ context.Context, raw json.RawMessage) (any, error) {
	var args roiArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	switch args.CalcType {
	case "marketing_roi":
		return marketingROI(args), nil
	case "content_roi":
		return contentROI(args), nil
	case "seo_roi":
		return seoROI(args), nil
	case "paid_media_roi":
		return paidMediaROI(args), nil
	case "influencer_roi":
		return influencerROI(args), nil
	case "event_roi":
		return eventROI(args), nil
	case "overall_marketing_mix_roi":
		return mixROI(args)
	default:
		return nil, fmt.Errorf("unknown calc_type %q: valid: marketing_roi, content_roi, seo_roi, paid_media_roi, influencer_roi, event_roi, overall_marketing_mix_roi", args.CalcType)
	}
}

// calcROI 返回 (毛利, 净利, ROI%)。
func calcROI(investment, revenue, marginPct float64) (float64, float64, float64) {
	margin := marginPct / 100
	grossProfit := revenue * margin
	netProfit := grossProfit - investment
	roiPct := math.Round(netProfit/math.Max(0.01, investment)*100*10) / 10
	return round2(grossProfit), round2(netProfit), roiPct
}

func marginOrDefault(pct, def float64) float64 {
	if pct == 0 {
		return def
	}
	return pct
}

func monthsOrDefault(m int) int {
	if m == 0 {
		return 12
	}
	return m
}

func marketingROI(args roiArgs) map[string]any {
	margin := marginOrDefault(args.GrossMarginPct, 100)
	months := monthsOrDefault(args.TimePeriodMonths)
	attribution := args.AttributionModel
	if attribution == "" {
		attribution = "last_touch"
	}

	grossProfit, netProfit, roi := calcROI(args.Investment, args.RevenueAttributed, margin)

	rating := "Negative"
	switch {
	case roi >= 300:
		rating = "Excellent"
	case roi >= 100:
		rating = "Good"
	case roi >= 0:
		rating = "Marginal"
	}

	return map[string]any{
		"calc_type":          "marketing_roi",
		"roi_pct":            roi,
		"monthly_roi_pct":    round1(roi / float64(months)),
		"net_profit":         netProfit,
		"gross_profit":       grossProfit,
		"investment":         args.Investment,
		"revenue_attributed": args.RevenueAttributed,
		"time_period_months": months,
		"attribution_model":  attribution,
		"rating":             rating,
	}
}

func contentROI(args roiArgs) map[string]any {
	pieces := args.ContentPiecesProduced
	if pieces < 1 {
		pieces = 1
	}
	margin := marginOrDefault(args.GrossMarginPct, 100)
	months := monthsOrDefault(args.TimePeriodMonths)

	_, netProfit, roi := calcROI(args.Investment, args.RevenueAttributed, margin)

	return map[string]any{
		"calc_type":             "content_roi",
		"roi_pct":               roi,
		"net_profit":            netProfit,
		"cost_per_piece":        round2(args.Investment / float64(pieces)),
		"roi_per_content_piece": round2(netProfit / float64(pieces)),
		"content_pieces":        pieces,
		"time_period_months":    months,
		"note":                  "Content ROI compounds over time: a blog post published today can generate traffic for 2-5 years. Consider 24-month ROI window.",
	}
}

func seoROI(args roiArgs) map[string]any {
	convRate := args.ConversionRatePct
	if convRate == 0 {
		convRate = 2
	}
	margin := marginOrDefault(args.GrossMarginPct, 70)
	months := monthsOrDefault(args.TimePeriodMonths)

	monthlyRevenue := float64(args.OrganicTrafficIncrease) * convRate / 100 * args.AverageOrderValue
	totalRevenue := monthlyRevenue * float64(months)
	_, netProfit, roi := calcROI(args.Investment, totalRevenue, margin)

	return map[string]any{
		"calc_type":                "seo_roi",
		"roi_pct":                  roi,
		"net_profit":               netProfit,
		"monthly_organic_revenue":  round2(monthlyRevenue),
		"total_attributed_revenue": round2(totalRevenue),
		"investment":               args.Investment,
		"monthly_traffic_increase": args.OrganicTrafficIncrease,
		"time_period_months":       months,
		"note":                     "SEO ROI is underestimated: organic traffic has no per-click cost. Consider 3-year NPV.",
	}
}

func paidMediaROI(args roiArgs) map[string]any {
	margin := marginOrDefault(args.GrossMarginPct, 70)

	roas := round2(args.RevenueAttributed / math.Max(0.01, args.Investment))
	_, netProfit, roi := calcROI(args.Investment, args.RevenueAttributed, margin)
	breakevenROAS := round2(100 / margin)

	comparison := "is below"
	advice := "Optimise creative, audience, and landing page before scaling."
	if roas > breakevenROAS {
		comparison = "exceeds"
		if roas > breakevenROAS*1.5 {
			advice = "Scale budget 20% and monitor CPA."
		}
	}

	return map[string]any{
		"calc_type":      "paid_media_roi",
		"roi_pct":        roi,
		"roas":           roas,
		"breakeven_roas": breakevenROAS,
		"net_profit":     netProfit,
		"investment":     args.Investment,
		"revenue":        args.RevenueAttributed,
		"recommendation": fmt.Sprintf("ROAS %vx %s breakeven of %vx. %s", roas, comparison, breakevenROAS, advice),
	}
}

func influencerROI(args roiArgs) map[string]any {
	reach := args.InfluencerReach
	if reach < 1 {
		reach = 1
	}
	margin := marginOrDefault(args.GrossMarginPct, 70)

	cpm := round2(args.Investment / float64(reach) * 1000)
	_, netProfit, roi := calcROI(args.Investment, args.RevenueAttributed, margin)

	return map[string]any{
		"calc_type":          "influencer_roi",
		"roi_pct":            roi,
		"net_profit":         netProfit,
		"cpm_cost":           cpm,
		"influencer_reach":   reach,
		"investment":         args.Investment,
		"revenue_attributed": args.RevenueAttributed,
		"benchmark":          "Good influencer CPM: $5-$20 for B2C. B2B micro-influencers: $20-$50 CPM but higher conversion intent.",
	}
}

func eventROI(args roiArgs) map[string]any {
	attendees := args.EventAttendees
	if attendees < 1 {
		attendees = 1
	}
	leads := args.LeadsFromEvent
	margin := marginOrDefault(args.GrossMarginPct, 70)

	costPerLead := args.Investment / math.Max(1, float64(leads))
	_, netProfit, roi := calcROI(args.Investment, args.RevenueAttributed, margin)

	return map[string]any{
		"calc_type":          "event_roi",
		"roi_pct":            roi,
		"net_profit":         netProfit,
		"cost_per_attendee":  round2(args.Investment / float64(attendees)),
		"cost_per_lead":      round2(costPerLead),
		"leads_generated":    leads,
		"attendees":          attendees,
		"investment":         args.Investment,
		"revenue_attributed": args.RevenueAttributed,
		"benchmark":          "B2B event benchmark: $150-$500 cost per lead. <$200 is excellent for trade shows.",
	}
}

func mixROI(args roiArgs) (map[string]any, error) {
	if len(args.ChannelInvestments) == 0 {
		return nil, fmt.Errorf("provide channel_investments array with channel, investment, and revenue for each channel")
	}
	margin := marginOrDefault(args.GrossMarginPct, 70)

	var totalInv, totalRev float64
	for _, c := range args.ChannelInvestments {
		totalInv += c.Investment
		totalRev += c.Revenue
	}
	_, netProfit, blendedROI := calcROI(totalInv, totalRev, margin)

	type channelDetail struct {
		Channel    string  `json:"channel"`
		Investment float64 `json:"investment"`
		Revenue    float64 `json:"revenue"`
		ROIPct     float64 `json:"roi_pct"`
	}
	details := make([]channelDetail, 0, len(args.ChannelInvestments))
	for _, c := range args.ChannelInvestments {
		name := c.Channel
		if name == "" {
			name = "Unknown"
		}
		_, _, roi := calcROI(c.Investment, c.Revenue, margin)
		details = append(details, channelDetail{Channel: name, Investment: c.Investment, Revenue: c.Revenue, ROIPct: roi})
	}
	sort.SliceStable(details, func(i, j int) bool { return details[i].ROIPct > details[j].ROIPct })

	tip := "Add more channels for mix optimisation."
	if len(details) >= 2 {
		best, worst := details[0], details[len(details)-1]
		tip = fmt.Sprintf("Reallocate budget from %q (ROI: %v%%) to %q (ROI: %v%%) for higher blended returns.",
			worst.Channel, worst.ROIPct, best.Channel, best.ROIPct)
	}

	return map[string]any{
		"calc_type":               "overall_marketing_mix_roi",
		"blended_roi_pct":         blendedROI,
		"total_investment":        round2(totalInv),
		"total_revenue":           round2(totalRev),
		"net_profit":              netProfit,
		"channel_breakdown":       details,
		"top_performing_channel":  details[0].Channel,
		"worst_performing_channel": details[len(details)-1].Channel,
		"optimisation_tip":        tip,
	}, nil
}
