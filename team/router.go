package team

import "strings"

// DefaultTeam 无关键词命中时的兜底团队
const DefaultTeam = "lead-generation-engine"

// 关键词 → 团队路由表。顺序即优先级：先命中者胜。
var routeTable = []struct {
	keywords []string
	team     string
}{
	{[]string{"lead", "prospect", "icp", "mql", "sql", "qualification", "bant", "meddic",
		"outbound", "prospecting", "pipeline", "sdr", "cadence", "cold outreach"}, "lead-generation-engine"},
	{[]string{"content", "blog", "seo", "copy", "copywriting", "article", "keyword",
		"organic", "backlink", "editorial", "landing page", "whitepaper"}, "content-marketing-team"},
	{[]string{"email", "sequence", "drip", "newsletter", "open rate", "deliverability",
		"subject line", "unsubscribe", "bounce", "esp", "nurture email"}, "email-campaign-manager"},
	{[]string{"social", "instagram", "linkedin post", "twitter", "tiktok", "youtube",
		"social media", "content calendar", "engagement", "influencer", "reel"}, "social-media-strategist"},
	{[]string{"analytics", "metrics", "roas", "cac", "ltv", "attribution", "funnel",
		"conversion rate", "churn", "mrr", "arr", "reporting", "dashboard"}, "campaign-analytics-hub"},
	{[]string{"competitor", "competitive", "battle", "battlecard", "positioning", "market",
		"win loss", "feature matrix", "differentiation", "pricing compare"}, "competitive-intelligence"},
	{[]string{"sales", "pipeline", "enablement", "objection", "close", "deal", "rep",
		"quota", "forecast", "coaching", "collateral", "pitch deck"}, "sales-enablement-team"},
	{[]string{"abm", "account based", "enterprise", "target account", "named account",
		"tier 1", "personali", "1:1 marketing"}, "abm-orchestrator"},
	{[]string{"brand", "messaging", "tone of voice", "voice and tone", "value proposition",
		"positioning statement", "category claim", "brand audit"}, "brand-voice-guardian"},
	{[]string{"growth", "viral", "referral", "experiment", "a/b test", "hack", "growth loop",
		"k-factor", "activation", "retention", "product led"}, "growth-hacker-lab"},
}

// Route 根据目标文本的关键词命中选择团队；无命中时返回 DefaultTeam。
func Route(goal string) string {
	lower := strings.ToLower(goal)
	for _, entry := range routeTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.team
			}
		}
	}
	return DefaultTeam
}
