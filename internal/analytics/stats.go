// Package analytics computes dashboard and history views from audit events.
//
// Every function takes events oldest first, the order audit.SQLiteStore
// returns them by default, and never mutates its input.
package analytics

import (
	"math"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// DashboardStats are the headline numbers on the dashboard page.
type DashboardStats struct {
	TotalExecutions      int64   `json:"total_executions"`
	TotalLLMCalls        int64   `json:"total_llm_calls"`
	AvgExecutionTimeMS   int64   `json:"avg_execution_time_ms"`
	SuccessRate          float64 `json:"success_rate"`
	TotalRowsReturned    int64   `json:"total_rows_returned"`
	UniqueTablesAnalyzed int64   `json:"unique_tables_analyzed"`
}

// DashboardStatistics aggregates the whole audit log.
func DashboardStatistics(events []core.AuditEvent) DashboardStats {
	var (
		stats     DashboardStats
		succeeded int64
		execTotal int64
		execCount int64
		tables    = map[string]struct{}{}
	)

	for i := range events {
		e := &events[i]
		ok := e.Status == core.StatusSuccess
		if ok {
			succeeded++
		}
		if e.TableName != "" {
			tables[e.TableName] = struct{}{}
		}

		switch {
		case e.EventType == core.EventSQLExecution:
			stats.TotalExecutions++
			if !ok {
				continue
			}
			if e.ExecutionTimeMS != nil {
				execTotal += *e.ExecutionTimeMS
				execCount++
			}
			stats.TotalRowsReturned += core.DerefInt64(e.RowCount)
		case e.EventType.IsLLM():
			stats.TotalLLMCalls++
		}
	}

	if execCount > 0 {
		stats.AvgExecutionTimeMS = execTotal / execCount
	}
	if len(events) > 0 {
		stats.SuccessRate = round(float64(succeeded)*100/float64(len(events)), 2)
	}
	stats.UniqueTablesAnalyzed = int64(len(tables))
	return stats
}

// SummaryStats is the analytics page header. Aggregates over an empty set are nil.
type SummaryStats struct {
	TotalQueries          int64    `json:"total_queries"`
	UniqueModelsUsed      int64    `json:"unique_models_used"`
	AvgCostPerQuery       *float64 `json:"avg_cost_per_query"`
	MaxCostQuery          *float64 `json:"max_cost_query"`
	MinCostQuery          *float64 `json:"min_cost_query"`
	AvgTimePerEvent       *float64 `json:"avg_time_per_event"`
	MaxTimeEvent          *int64   `json:"max_time_event"`
	TotalPromptTokens     *int64   `json:"total_prompt_tokens"`
	TotalCompletionTokens *int64   `json:"total_completion_tokens"`
	AvgRowsReturned       *float64 `json:"avg_rows_returned"`
	TokensPerDollar       float64  `json:"tokens_per_dollar"`
}

// Summary compares cost, time and volume across every recorded event.
func Summary(events []core.AuditEvent) SummaryStats {
	var (
		out      SummaryStats
		sessions = map[string]struct{}{}
		models   = map[string]struct{}{}
		cost     mean
		elapsed  mean
		rows     mean
	)

	for i := range events {
		e := &events[i]
		if e.SessionID != "" {
			sessions[e.SessionID] = struct{}{}
		}
		if e.EventType.IsLLM() && e.ModelID != "" {
			models[e.ModelID] = struct{}{}
		}
		if e.Status != core.StatusSuccess {
			continue
		}

		if e.EstimatedCostUSD != nil {
			c := *e.EstimatedCostUSD
			cost.add(c)
			out.MaxCostQuery = maxFloat(out.MaxCostQuery, c)
			if c > 0 && (out.MinCostQuery == nil || c < *out.MinCostQuery) {
				out.MinCostQuery = core.Float64(c)
			}
		}
		if e.ExecutionTimeMS != nil {
			elapsed.add(float64(*e.ExecutionTimeMS))
			if out.MaxTimeEvent == nil || *e.ExecutionTimeMS > *out.MaxTimeEvent {
				out.MaxTimeEvent = core.Int64(*e.ExecutionTimeMS)
			}
		}
		out.TotalPromptTokens = addInt(out.TotalPromptTokens, e.PromptTokens)
		out.TotalCompletionTokens = addInt(out.TotalCompletionTokens, e.CompletionTokens)
		if e.EventType == core.EventSQLExecution && e.RowCount != nil {
			rows.add(float64(*e.RowCount))
		}
	}

	out.TotalQueries = int64(len(sessions))
	out.UniqueModelsUsed = int64(len(models))
	out.AvgCostPerQuery = cost.value()
	out.AvgTimePerEvent = elapsed.value()
	out.AvgRowsReturned = rows.value()

	tokens := float64(core.DerefInt64(out.TotalPromptTokens) + core.DerefInt64(out.TotalCompletionTokens))
	spent := core.DerefFloat64(out.AvgCostPerQuery) * float64(out.TotalQueries)
	if spent > 0 {
		out.TokensPerDollar = tokens / spent
	}
	return out
}

// mean accumulates an average that is nil when nothing was added.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return core.Float64(m.sum / float64(m.n))
}

func maxFloat(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return core.Float64(v)
	}
	return cur
}

func addInt(sum, v *int64) *int64 {
	if v == nil {
		return sum
	}
	return core.Int64(core.DerefInt64(sum) + *v)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
