// Package marketing 提供销售与营销指标计算器工具：线索评分（ILT、BANT、
// MEDDIC、线索增速、成交概率）、活动分析（CAC、LTV、ROAS、回本周期、
// MRR 增长、流失率、NPS）与营销 ROI。
//
// 所有计算器都是纯函数，通过 RegisterAll 挂到 tool.Registry 上，
// 由专家执行器按角色权限调用。
package marketing
