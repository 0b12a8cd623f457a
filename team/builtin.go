package team

// 内置销售/营销团队目录。覆盖完整的收入增长生命周期：
// 线索获取、内容、邮件、社媒、分析、竞情、销售赋能、ABM、品牌、增长实验。

// Builtin 返回全部内置团队定义（按目录顺序）。
func Builtin() []Team {
	return []Team{
		leadGenerationEngine(),
		contentMarketingTeam(),
		emailCampaignManager(),
		socialMediaStrategist(),
		campaignAnalyticsHub(),
		competitiveIntelligence(),
		salesEnablementTeam(),
		abmOrchestrator(),
		brandVoiceGuardian(),
		growthHackerLab(),
	}
}

// RegisterBuiltin 将内置团队全部注册到注册表。
func RegisterBuiltin(reg *Registry) error {
	for _, t := range Builtin() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func leadGenerationEngine() Team {
	return Team{
		Name:        "lead-generation-engine",
		Description: "Multi-channel lead generation with ICP scoring, BANT/MEDDIC qualification, and SQL handoff.",
		Mode:        ModeHierarchical,
		Temperature: 0.1,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "demand-generation",
			"kpis":     "MQLs per week; MQL->SQL rate; SQL pipeline value; CAC by source",
		},
		Roles: []AgentRole{
			{
				Name:   "lead-gen-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate the lead generation lifecycle end to end. Break the goal into ICP definition, " +
					"prospecting, scoring, and qualification work, then assemble the outputs into a weekly pipeline plan " +
					"with MQL and SQL targets.",
				Tools: []string{"lead_scoring_calc", "campaign_analytics_calc"},
			},
			{
				Name:   "icp-analyst",
				Weight: 0.9,
				Instructions: "You define and refine the Ideal Customer Profile. Extract firmographic patterns (industry, " +
					"company size, geography, growth stage) and the top 3 buyer personas. Document Tier A/B/C fit profiles " +
					"with pain points and trigger events.",
			},
			{
				Name:   "linkedin-prospector",
				Weight: 0.7,
				Instructions: "You build LinkedIn prospecting plays for the ICP. Produce Boolean search strings, " +
					"persona targeting criteria, and a connection-plus-message cadence keyed to recent activity signals.",
			},
			{
				Name:   "cold-email-agent",
				Weight: 0.7,
				Instructions: "You design cold email sequences. Personalise the opening with a company trigger event, keep " +
					"each email under 120 words, and define a 4-touch cadence with clear CTAs and breakup email.",
			},
			{
				Name:   "intent-data-agent",
				Weight: 0.6,
				Instructions: "You activate buyer intent data. Identify which ICP accounts are actively researching the " +
					"category and recommend prioritisation and outreach timing based on signal strength.",
			},
			{
				Name:   "lead-scorer",
				Weight: 0.8,
				Instructions: "You score and tier leads. Apply ILT scoring (firmographic fit, title seniority, engagement " +
					"signals), BANT qualification with the MQL threshold at 60, and MEDDIC for high-value deals. Assign " +
					"A/B/C/D tiers with routing actions.",
				Tools: []string{"lead_scoring_calc"},
			},
			{
				Name:   "sdr-qualifier",
				Weight: 0.8,
				Instructions: "You qualify tiered leads for sales handoff. Draft discovery call structure, capture " +
					"BANT/MEDDIC fields, and produce the warm handoff summary an AE needs: fit score, pain summary, " +
					"and recommended discovery questions.",
				Tools: []string{"lead_scoring_calc"},
			},
		},
	}
}

func contentMarketingTeam() Team {
	return Team{
		Name:        "content-marketing-team",
		Description: "SEO content strategy: keyword research, content briefs, SEO-optimised writing, distribution.",
		Mode:        ModeHierarchical,
		Temperature: 0.25,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "content-marketing",
			"kpis":     "Organic sessions; keyword rankings; content-attributed MQLs; content ROI",
		},
		Roles: []AgentRole{
			{
				Name:   "content-orchestrator",
				Weight: 1.0,
				Instructions: "You own the content engine. Turn the goal into a keyword-to-brief-to-draft-to-distribution " +
					"plan and assemble a 90-day content calendar with funnel-stage coverage.",
				Tools: []string{"roi_calculator"},
			},
			{
				Name:   "keyword-researcher",
				Weight: 0.9,
				Instructions: "You research keywords across TOFU, MOFU, and BOFU tiers. Map keywords to buyer pain points " +
					"and journey stages, prioritise by difficulty versus authority gap, and surface competitor content gaps.",
			},
			{
				Name:   "brief-writer",
				Weight: 0.8,
				Instructions: "You write content briefs: target keyword plus supporting terms, H1/H2/H3 structure, word " +
					"count target from SERP analysis, required sections, internal link targets, and a funnel-matched CTA.",
			},
			{
				Name:   "seo-content-writer",
				Weight: 0.8,
				Instructions: "You draft SEO content that follows the brief exactly. Hook the reader's pain in the first " +
					"100 words, keep paragraphs short, weave keywords naturally, and write meta title and description.",
			},
			{
				Name:   "content-editor",
				Weight: 0.7,
				Instructions: "You review drafts for readability, keyword coverage, brand voice, and factual accuracy. " +
					"Return concrete line-level edits, not general commentary.",
			},
			{
				Name:   "distribution-agent",
				Weight: 0.6,
				Instructions: "You plan distribution: social repurposing, email summary, community syndication, and " +
					"backlink outreach, with a 6-month refresh checkpoint.",
				Tools: []string{"roi_calculator"},
			},
		},
	}
}

func emailCampaignManager() Team {
	return Team{
		Name:        "email-campaign-manager",
		Description: "Email sequence design, audience segmentation, A/B testing, deliverability management.",
		Mode:        ModeHierarchical,
		Temperature: 0.2,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "email-marketing",
			"kpis":     "Open rate; CTR; revenue per email; deliverability score; sequence ROI",
		},
		Roles: []AgentRole{
			{
				Name:   "email-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate email programme design: segmentation, sequence architecture, testing plan, " +
					"and deliverability guardrails, assembled into one launch-ready campaign plan.",
				Tools: []string{"campaign_analytics_calc"},
			},
			{
				Name:   "segmentation-agent",
				Weight: 0.9,
				Instructions: "You segment the audience by lifecycle stage, engagement recency, and firmographic fit. " +
					"Define entry and exit criteria per segment.",
			},
			{
				Name:   "sequence-designer",
				Weight: 0.85,
				Instructions: "You design the email sequence per segment: number of touches, send spacing, message angle " +
					"per touch, and the conversion goal of each email.",
			},
			{
				Name:   "subject-line-tester",
				Weight: 0.7,
				Instructions: "You produce subject line variants for A/B testing: 5 variants per email across curiosity, " +
					"benefit, and urgency angles, each under 50 characters, with a testing rotation plan.",
			},
			{
				Name:   "deliverability-agent",
				Weight: 0.6,
				Instructions: "You protect deliverability: authentication checklist (SPF/DKIM/DMARC), warm-up schedule, " +
					"list hygiene rules, and spam-trigger review of draft copy.",
			},
			{
				Name:   "performance-analyst",
				Weight: 0.75,
				Instructions: "You define the measurement plan: open, click, reply, and unsubscribe benchmarks per segment, " +
					"plus revenue-per-email attribution and iteration triggers.",
				Tools: []string{"campaign_analytics_calc", "roi_calculator"},
			},
		},
	}
}

func socialMediaStrategist() Team {
	return Team{
		Name:        "social-media-strategist",
		Description: "Platform-specific content calendar, engagement strategy, and paid social amplification.",
		Mode:        ModeFlat,
		Temperature: 0.4,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "social-media",
			"kpis":     "Follower growth rate; engagement rate; reach; social-attributed MQLs; CPL",
		},
		Roles: []AgentRole{
			{
				Name:   "linkedin-specialist",
				Weight: 0.9,
				Instructions: "You own LinkedIn strategy: posting cadence, post formats (text, carousel, poll), thought " +
					"leadership angles, and engagement tactics for B2B reach.",
			},
			{
				Name:   "twitter-specialist",
				Weight: 0.8,
				Instructions: "You own Twitter/X strategy: thread topics, hook structures, reply-guy engagement targets, " +
					"and repurposing of long-form content into threads.",
			},
			{
				Name:   "instagram-specialist",
				Weight: 0.7,
				Instructions: "You own Instagram strategy: reel concepts, story sequences, visual identity guidelines, " +
					"and hashtag clusters.",
			},
			{
				Name:   "youtube-specialist",
				Weight: 0.7,
				Instructions: "You own YouTube strategy: video topics mapped to search demand, title and thumbnail " +
					"patterns, and shorts repurposing from long-form.",
			},
			{
				Name:   "paid-social-specialist",
				Weight: 0.85,
				Instructions: "You design paid amplification: audience definitions, budget split across platforms, " +
					"creative test matrix, and CPL targets per channel.",
				Tools: []string{"campaign_analytics_calc", "roi_calculator"},
			},
		},
	}
}

func campaignAnalyticsHub() Team {
	return Team{
		Name:        "campaign-analytics-hub",
		Description: "Multi-touch attribution, CAC/LTV/ROAS analysis, funnel optimisation, budget reallocation.",
		Mode:        ModeHierarchical,
		Temperature: 0.1,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "marketing-analytics",
			"kpis":     "ROAS by channel; CAC by source; LTV:CAC ratio; funnel conversion rates",
		},
		Roles: []AgentRole{
			{
				Name:   "analytics-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate marketing analytics: attribution, unit economics, funnel diagnosis, and " +
					"budget recommendations, assembled into one performance narrative with decisions attached.",
				Tools: []string{"campaign_analytics_calc", "roi_calculator", "lead_scoring_calc"},
			},
			{
				Name:   "attribution-modeler",
				Weight: 0.9,
				Instructions: "You choose and apply the attribution model (first-touch, last-touch, linear, time-decay) " +
					"appropriate to the sales cycle, and explain how channel credit shifts under each.",
			},
			{
				Name:   "metrics-calculator",
				Weight: 0.9,
				Instructions: "You compute the unit economics: CAC, fully-loaded CAC, LTV, LTV:CAC, ROAS, margin-adjusted " +
					"ROAS, payback period, MRR growth, churn, and NPS. Always show the inputs and the formula used.",
				Tools: []string{"campaign_analytics_calc", "roi_calculator"},
			},
			{
				Name:   "funnel-analyst",
				Weight: 0.8,
				Instructions: "You diagnose the funnel: stage-by-stage conversion rates, the single biggest bottleneck, " +
					"and the highest-leverage fix with expected impact.",
			},
			{
				Name:   "budget-optimizer",
				Weight: 0.75,
				Instructions: "You reallocate budget: rank channels by marginal ROAS, propose shifts from underperformers " +
					"to outperformers, and state the expected blended ROI delta.",
				Tools: []string{"roi_calculator"},
			},
			{
				Name:   "reporting-agent",
				Weight: 0.6,
				Instructions: "You design the reporting layer: dashboard structure, metric definitions, refresh cadence, " +
					"and the weekly executive summary format.",
			},
		},
	}
}

func competitiveIntelligence() Team {
	return Team{
		Name:        "competitive-intelligence",
		Description: "Competitor tracking, feature matrix, positioning gaps, win/loss analysis, battlecard creation.",
		Mode:        ModeHierarchical,
		Temperature: 0.2,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "competitive-intelligence",
			"kpis":     "Battlecard coverage; win rate vs. each competitor; competitive displacement rate",
		},
		Roles: []AgentRole{
			{
				Name:   "intel-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate competitive intelligence: landscape mapping, feature comparison, positioning " +
					"analysis, and battlecard production, assembled into a competitive playbook.",
			},
			{
				Name:   "competitor-tracker",
				Weight: 0.9,
				Instructions: "You map the competitive landscape: direct and indirect competitors, their pricing and " +
					"packaging, recent launches, and funding or acquisition moves worth watching.",
			},
			{
				Name:   "feature-analyst",
				Weight: 0.8,
				Instructions: "You build the feature comparison matrix: capability rows, competitor columns, honest " +
					"have/partial/missing ratings, and the differentiators that actually matter to buyers.",
			},
			{
				Name:   "positioning-analyst",
				Weight: 0.8,
				Instructions: "You find positioning gaps: claims competitors make, claims nobody makes, and the " +
					"defensible position this product can own with proof points.",
			},
			{
				Name:   "winloss-analyst",
				Weight: 0.7,
				Instructions: "You analyse win/loss patterns: why deals are won or lost against each competitor, which " +
					"objections recur, and which plays change outcomes.",
			},
			{
				Name:   "battlecard-writer",
				Weight: 0.75,
				Instructions: "You write battlecards per competitor: how to identify them in a deal, landmines to plant, " +
					"objection responses, and the two-sentence why-we-win.",
			},
		},
	}
}

func salesEnablementTeam() Team {
	return Team{
		Name:        "sales-enablement-team",
		Description: "Pain mapping, collateral audit, battlecards, objection handling, pipeline coaching.",
		Mode:        ModeHierarchical,
		Temperature: 0.2,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "sales-enablement",
			"kpis":     "Ramp time for new reps; win rate; deal cycle length; pipeline quality score",
		},
		Roles: []AgentRole{
			{
				Name:   "enablement-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate sales enablement: pain research, collateral coverage, objection handling, " +
					"and pipeline coaching, assembled into an enablement plan tied to rep ramp and win rate.",
				Tools: []string{"lead_scoring_calc", "campaign_analytics_calc"},
			},
			{
				Name:   "pain-researcher",
				Weight: 0.9,
				Instructions: "You map ICP pain points: the business problem, who feels it, what it costs them, and the " +
					"discovery questions that surface it.",
			},
			{
				Name:   "collateral-auditor",
				Weight: 0.7,
				Instructions: "You audit sales collateral against the buyer journey: what exists per stage, what is " +
					"missing, what is stale, and the priority build list.",
			},
			{
				Name:   "battlecard-creator",
				Weight: 0.75,
				Instructions: "You create competitor battlecards for sellers: quick-identify cues, trap-setting " +
					"questions, objection responses, and proof points.",
			},
			{
				Name:   "objection-handler",
				Weight: 0.8,
				Instructions: "You build the objection handling guide: the top objections by deal stage, the " +
					"acknowledge-reframe-proof response for each, and when to walk away.",
			},
			{
				Name:   "pipeline-coach",
				Weight: 0.7,
				Instructions: "You review pipeline health: stage hygiene, stalled-deal criteria, qualification gaps " +
					"per the team's scoring model, and rep-level coaching recommendations.",
				Tools: []string{"lead_scoring_calc"},
			},
		},
	}
}

func abmOrchestrator() Team {
	return Team{
		Name:        "abm-orchestrator",
		Description: "Enterprise ABM: target account selection, account research, personalised multi-touch campaigns.",
		Mode:        ModeHierarchical,
		Temperature: 0.15,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "account-based-marketing",
			"kpis":     "ABM account MQL rate; meeting acceptance rate; ABM pipeline ACV; ABM win rate",
		},
		Roles: []AgentRole{
			{
				Name:   "abm-orchestrator-agent",
				Weight: 1.0,
				Instructions: "You coordinate the ABM motion: account selection, research, personalisation, and " +
					"multi-channel orchestration, assembled into per-tier account plays.",
				Tools: []string{"lead_scoring_calc"},
			},
			{
				Name:   "account-selector",
				Weight: 0.9,
				Instructions: "You select target accounts: score against the ICP, tier into 1:1, 1:few, and 1:many, and " +
					"justify each Tier 1 pick with fit and intent evidence.",
				Tools: []string{"lead_scoring_calc"},
			},
			{
				Name:   "account-researcher",
				Weight: 0.85,
				Instructions: "You research target accounts: org structure, buying committee, strategic initiatives, " +
					"tech stack, and the trigger events that open a conversation.",
			},
			{
				Name:   "campaign-personalizer",
				Weight: 0.8,
				Instructions: "You personalise campaign assets per account: messaging that names their initiative, " +
					"role-specific value props for each committee member, and personalised landing page outlines.",
			},
			{
				Name:   "outreach-coordinator",
				Weight: 0.75,
				Instructions: "You sequence multi-channel outreach per account: email, LinkedIn, ads, and direct mail " +
					"touches ordered over a 6-week arc with owner and trigger for each touch.",
			},
			{
				Name:   "account-reporter",
				Weight: 0.6,
				Instructions: "You define account engagement measurement: engagement scoring across the committee, " +
					"stage progression criteria, and the ABM-versus-baseline comparison.",
			},
		},
	}
}

func brandVoiceGuardian() Team {
	return Team{
		Name:        "brand-voice-guardian",
		Description: "Brand audit, tone of voice guidelines, messaging matrix, and pre-launch content review.",
		Mode:        ModeFlat,
		Temperature: 0.3,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "brand",
			"kpis":     "Brand audit score; content review approval rate; share of voice; branded search volume",
		},
		Roles: []AgentRole{
			{
				Name:   "brand-strategist",
				Weight: 0.9,
				Instructions: "You audit brand consistency across touchpoints and define the brand strategy: promise, " +
					"personality, and the perception gap between current and desired.",
			},
			{
				Name:   "tone-of-voice-specialist",
				Weight: 0.8,
				Instructions: "You document tone of voice: voice attributes with do/don't examples, register shifts per " +
					"channel, and words the brand never uses.",
			},
			{
				Name:   "messaging-architect",
				Weight: 0.85,
				Instructions: "You build the messaging matrix: value proposition, pillar messages with proof points, " +
					"and persona-specific message variants.",
			},
			{
				Name:   "content-reviewer",
				Weight: 0.7,
				Instructions: "You review content pre-launch against the brand guidelines: flag off-voice passages, " +
					"unsupported claims, and inconsistent terminology, with suggested rewrites.",
			},
		},
	}
}

func growthHackerLab() Team {
	return Team{
		Name:        "growth-hacker-lab",
		Description: "Viral loop design, referral programme mechanics, ICE-scored experiment backlog.",
		Mode:        ModeHierarchical,
		Temperature: 0.35,
		MaxTokens:   8192,
		Metadata: map[string]string{
			"category": "growth",
			"kpis":     "Viral coefficient (K-factor); referral CAC; experiment velocity; growth rate MoM",
		},
		Roles: []AgentRole{
			{
				Name:   "growth-orchestrator",
				Weight: 1.0,
				Instructions: "You coordinate the growth programme: model the AARRR funnel, prioritise loops and " +
					"experiments, and assemble the quarterly growth plan.",
				Tools: []string{"campaign_analytics_calc", "roi_calculator"},
			},
			{
				Name:   "growth-model-analyst",
				Weight: 0.9,
				Instructions: "You map the growth model: acquisition, activation, retention, referral, and revenue " +
					"rates, the compounding loops between them, and the constraint stage to attack first.",
				Tools: []string{"campaign_analytics_calc"},
			},
			{
				Name:   "viral-loop-designer",
				Weight: 0.8,
				Instructions: "You design viral loops: the invite trigger, incentive structure, friction points, and " +
					"the K-factor math with realistic branch and conversion assumptions.",
			},
			{
				Name:   "referral-architect",
				Weight: 0.75,
				Instructions: "You architect the referral programme: two-sided incentive design, qualification rules, " +
					"fraud guards, and referral CAC versus paid CAC comparison.",
				Tools: []string{"roi_calculator"},
			},
			{
				Name:   "experiment-runner",
				Weight: 0.8,
				Instructions: "You build the experiment backlog: hypotheses scored by ICE (impact, confidence, ease), " +
					"minimum detectable effect and sample size per test, and a weekly run cadence.",
			},
			{
				Name:   "channel-scout",
				Weight: 0.6,
				Instructions: "You scout new acquisition channels: underpriced channels for this audience, a cheap " +
					"validation test per channel, and kill criteria.",
			},
		},
	}
}
