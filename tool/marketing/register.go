package marketing

import (
	"encoding/json"

	"github.com/vibecaas/nanoswarm/tool"
	"github.com/vibecaas/nanoswarm/types"
)

const leadScoringSchema = `{
  "type": "object",
  "properties": {
    "calc_type": {"type": "string", "enum": ["ilt_score", "bant_qualify", "meddic_score", "lead_velocity_rate", "conversion_probability"]},
    "company_size": {"type": "integer", "description": "Employee count of the target company."},
    "industry": {"type": "string"},
    "title_seniority": {"type": "string", "enum": ["C-Suite", "VP", "Director", "Manager", "Individual Contributor", "Unknown"]},
    "engagement_signals": {"type": "integer", "description": "Count of engagement events (page views, downloads, replies)."},
    "budget_range": {"type": "string", "enum": ["<$10k", "$10k-$50k", "$50k-$200k", "$200k-$1M", ">$1M", "Unknown"]},
    "pain_score": {"type": "integer", "description": "Pain intensity 0-10."},
    "timeline_months": {"type": "number", "description": "Months until purchase decision."},
    "decision_maker_confirmed": {"type": "boolean"},
    "champion_identified": {"type": "boolean"},
    "current_month_qualified": {"type": "integer"},
    "previous_month_qualified": {"type": "integer"},
    "stage_win_rates": {"type": "array", "items": {"type": "number"}},
    "days_in_stage": {"type": "number"}
  },
  "required": ["calc_type"]
}`

const campaignAnalyticsSchema = `{
  "type": "object",
  "properties": {
    "calc_type": {"type": "string", "enum": ["cac", "ltv", "roas", "payback_period", "mrr_growth", "churn_rate", "nps_score"]},
    "ad_spend": {"type": "number", "description": "Total advertising / marketing spend ($)."},
    "new_customers": {"type": "integer"},
    "revenue_attributed": {"type": "number"},
    "average_order_value": {"type": "number"},
    "gross_margin_pct": {"type": "number", "description": "Gross margin percentage (0-100)."},
    "monthly_churn_rate_pct": {"type": "number"},
    "average_purchase_frequency": {"type": "number", "description": "Purchases per customer per year."},
    "current_mrr": {"type": "number"},
    "previous_mrr": {"type": "number"},
    "churned_customers": {"type": "integer"},
    "starting_customers": {"type": "integer"},
    "promoters": {"type": "integer"},
    "detractors": {"type": "integer"},
    "total_respondents": {"type": "integer"},
    "sales_overhead_pct": {"type": "number", "description": "Sales overhead percentage for fully-loaded CAC."}
  },
  "required": ["calc_type"]
}`

const roiCalculatorSchema = `{
  "type": "object",
  "properties": {
    "calc_type": {"type": "string", "enum": ["marketing_roi", "content_roi", "seo_roi", "paid_media_roi", "influencer_roi", "event_roi", "overall_marketing_mix_roi"]},
    "investment": {"type": "number", "description": "Total investment/spend in this channel ($)."},
    "revenue_attributed": {"type": "number"},
    "time_period_months": {"type": "integer"},
    "attribution_model": {"type": "string", "enum": ["last_touch", "first_touch", "linear", "time_decay", "data_driven"]},
    "gross_margin_pct": {"type": "number"},
    "organic_traffic_increase": {"type": "integer", "description": "Monthly organic session increase from SEO."},
    "conversion_rate_pct": {"type": "number"},
    "average_order_value": {"type": "number"},
    "content_pieces_produced": {"type": "integer"},
    "influencer_reach": {"type": "integer"},
    "event_attendees": {"type": "integer"},
    "leads_from_event": {"type": "integer"},
    "channel_investments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "channel": {"type": "string"},
          "investment": {"type": "number"},
          "revenue": {"type": "number"}
        }
      }
    }
  },
  "required": ["calc_type"]
}`

// RegisterAll 将全部营销计算器注册到工具注册表。
func RegisterAll(reg *tool.Registry) error {
	entries := []tool.Tool{
		{
			Schema: types.ToolSchema{
				Name:        "lead_scoring_calc",
				Description: "Scores and qualifies leads using ILT fit scoring, BANT, MEDDIC, lead velocity rate, and stage-weighted conversion probability.",
				Parameters:  json.RawMessage(leadScoringSchema),
			},
			Fn: LeadScoring,
		},
		{
			Schema: types.ToolSchema{
				Name:        "campaign_analytics_calc",
				Description: "Calculates campaign and business performance metrics including CAC, LTV, ROAS, payback period, MRR growth, churn rate, and NPS.",
				Parameters:  json.RawMessage(campaignAnalyticsSchema),
			},
			Fn: CampaignAnalytics,
		},
		{
			Schema: types.ToolSchema{
				Name:        "roi_calculator",
				Description: "Calculates ROI for individual marketing channels (content, SEO, paid media, influencer, events) and blended marketing mix ROI.",
				Parameters:  json.RawMessage(roiCalculatorSchema),
			},
			Fn: ROICalculator,
		},
	}

	for _, t := range entries {
		if err := reg.Register(t.Schema, t.Fn); err != nil {
			return err
		}
	}
	return nil
}
