package analytics

import (
	"cmp"
	"slices"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// DetailLimit caps LLMAnalytics details.
const DetailLimit = 100

// LLMAggregates totals successful model calls.
type LLMAggregates struct {
	TotalPromptTokens     int64   `json:"total_prompt_tokens"`
	TotalCompletionTokens int64   `json:"total_completion_tokens"`
	TotalTokens           int64   `json:"total_tokens"`
	TotalCostUSD          float64 `json:"total_cost_usd"`
	AvgCostPerCallUSD     float64 `json:"avg_cost_per_call_usd"`
	TotalLLMCalls         int64   `json:"total_llm_calls"`
}

// LLMReport is the per-call LLM analytics payload.
type LLMReport struct {
	Details    []core.AuditEvent `json:"details"`
	Aggregates LLMAggregates     `json:"aggregates"`
}

// LLMAnalytics lists the newest model calls and totals the successful ones.
func LLMAnalytics(events []core.AuditEvent) LLMReport {
	report := LLMReport{Details: []core.AuditEvent{}}
	var cost mean

	for i := len(events) - 1; i >= 0; i-- {
		e := &events[i]
		if !e.EventType.IsLLM() {
			continue
		}
		if len(report.Details) < DetailLimit {
			report.Details = append(report.Details, *e)
		}
		if e.Status != core.StatusSuccess {
			continue
		}

		agg := &report.Aggregates
		agg.TotalLLMCalls++
		agg.TotalPromptTokens += core.DerefInt64(e.PromptTokens)
		agg.TotalCompletionTokens += core.DerefInt64(e.CompletionTokens)
		agg.TotalTokens += core.DerefInt64(e.TotalTokens)
		if e.EstimatedCostUSD != nil {
			cost.add(*e.EstimatedCostUSD)
		}
	}

	report.Aggregates.TotalCostUSD = round(cost.sum, 4)
	report.Aggregates.AvgCostPerCallUSD = round(core.DerefFloat64(cost.value()), 6)
	return report
}

// ModelCost is one row of the cost-by-model table.
type ModelCost struct {
	ModelID               string  `json:"model_id"`
	TotalPromptTokens     int64   `json:"total_prompt_tokens"`
	TotalCompletionTokens int64   `json:"total_completion_tokens"`
	TotalTokens           int64   `json:"total_tokens"`
	TotalCost             float64 `json:"total_cost"`
	CallCount             int64   `json:"call_count"`
}

// CostReport groups successful model calls by model, most expensive first.
type CostReport struct {
	Models                []ModelCost `json:"models"`
	TotalCost             float64     `json:"total_cost"`
	TotalPromptTokens     int64       `json:"total_prompt_tokens"`
	TotalCompletionTokens int64       `json:"total_completion_tokens"`
}

// CostsByModel totals spend per model.
func CostsByModel(events []core.AuditEvent) CostReport {
	report := CostReport{Models: []ModelCost{}}
	for _, g := range groupByModel(events) {
		report.Models = append(report.Models, ModelCost{
			ModelID:               g.modelID,
			TotalPromptTokens:     g.prompt,
			TotalCompletionTokens: g.completion,
			TotalTokens:           g.total,
			TotalCost:             g.cost,
			CallCount:             g.calls,
		})
		report.TotalCost += g.cost
		report.TotalPromptTokens += g.prompt
		report.TotalCompletionTokens += g.completion
	}

	slices.SortStableFunc(report.Models, func(a, b ModelCost) int {
		return cmp.Compare(b.TotalCost, a.TotalCost)
	})
	return report
}

// ModelUsage is one model's usage profile.
type ModelUsage struct {
	ModelID               string   `json:"model_id"`
	UsageCount            int64    `json:"usage_count"`
	TotalCost             float64  `json:"total_cost"`
	AvgExecutionTime      *float64 `json:"avg_execution_time"`
	TotalPromptTokens     int64    `json:"total_prompt_tokens"`
	TotalCompletionTokens int64    `json:"total_completion_tokens"`
}

// UsageReport ranks models along several axes.
type UsageReport struct {
	MostUsed   []ModelUsage `json:"most_used"`
	MostCostly []ModelUsage `json:"most_costly"`
	Slowest    []ModelUsage `json:"slowest"`
	Fastest    []ModelUsage `json:"fastest"`
	AllModels  []ModelUsage `json:"all_models"`
}

const usageTop = 5

// LLMUsage ranks models by call count, cost and latency.
// Models without a recorded latency rank last among the fastest.
func LLMUsage(events []core.AuditEvent) UsageReport {
	all := []ModelUsage{}
	for _, g := range groupByModel(events) {
		all = append(all, ModelUsage{
			ModelID:               g.modelID,
			UsageCount:            g.calls,
			TotalCost:             g.cost,
			AvgExecutionTime:      g.elapsed.value(),
			TotalPromptTokens:     g.prompt,
			TotalCompletionTokens: g.completion,
		})
	}

	byUsage := func(a, b ModelUsage) int { return cmp.Compare(b.UsageCount, a.UsageCount) }
	slices.SortStableFunc(all, byUsage)

	return UsageReport{
		MostUsed: topN(all, usageTop, byUsage),
		MostCostly: topN(all, usageTop, func(a, b ModelUsage) int {
			return cmp.Compare(b.TotalCost, a.TotalCost)
		}),
		Slowest: topN(all, usageTop, func(a, b ModelUsage) int {
			return cmp.Compare(core.DerefFloat64(b.AvgExecutionTime), core.DerefFloat64(a.AvgExecutionTime))
		}),
		Fastest: topN(all, usageTop, func(a, b ModelUsage) int {
			switch {
			case a.AvgExecutionTime == nil && b.AvgExecutionTime == nil:
				return 0
			case a.AvgExecutionTime == nil:
				return 1
			case b.AvgExecutionTime == nil:
				return -1
			}
			return cmp.Compare(*a.AvgExecutionTime, *b.AvgExecutionTime)
		}),
		AllModels: all,
	}
}

type modelGroup struct {
	modelID    string
	calls      int64
	cost       float64
	prompt     int64
	completion int64
	total      int64
	elapsed    mean
}

// groupByModel folds successful LLM events with a model id, in first-seen order.
func groupByModel(events []core.AuditEvent) []*modelGroup {
	var order []*modelGroup
	index := map[string]*modelGroup{}

	for i := range events {
		e := &events[i]
		if !e.EventType.IsLLM() || e.Status != core.StatusSuccess || e.ModelID == "" {
			continue
		}
		g, ok := index[e.ModelID]
		if !ok {
			g = &modelGroup{modelID: e.ModelID}
			index[e.ModelID] = g
			order = append(order, g)
		}
		g.calls++
		g.cost += core.DerefFloat64(e.EstimatedCostUSD)
		g.prompt += core.DerefInt64(e.PromptTokens)
		g.completion += core.DerefInt64(e.CompletionTokens)
		g.total += core.DerefInt64(e.TotalTokens)
		if e.ExecutionTimeMS != nil {
			g.elapsed.add(float64(*e.ExecutionTimeMS))
		}
	}
	return order
}

// topN returns the first n items of a sorted copy of s.
func topN[T any](s []T, n int, less func(a, b T) int) []T {
	sorted := slices.Clone(s)
	slices.SortStableFunc(sorted, less)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []T{}
	}
	return sorted
}
