package analytics

import (
	"cmp"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

const (
	queryLimit  = 100
	queryTop    = 10
	recentLimit = 20
)

// QueryStat summarises one query session's successful events.
type QueryStat struct {
	SessionID          string    `json:"session_id"`
	Timestamp          time.Time `json:"timestamp"`
	Catalog            string    `json:"catalog"`
	SchemaName         string    `json:"schema_name"`
	TableName          string    `json:"table_name"`
	GeneratedSQL       string    `json:"generated_sql"`
	BusinessLogic      string    `json:"business_logic"`
	TotalCostUSD       float64   `json:"total_cost_usd"`
	TotalTimeMS        int64     `json:"total_time_ms"`
	TotalTokens        int64     `json:"total_tokens"`
	RowCount           *int64    `json:"row_count"`
	SQLExecutionTimeMS *int64    `json:"sql_execution_time_ms"`

	started bool
}

// TopQueriesReport ranks recent query sessions.
type TopQueriesReport struct {
	MostCostly       []QueryStat `json:"most_costly"`
	SlowestTotalTime []QueryStat `json:"slowest_total_time"`
	SlowestExecution []QueryStat `json:"slowest_execution"`
	MostRowsReturned []QueryStat `json:"most_rows_returned"`
	RecentQueries    []QueryStat `json:"recent_queries"`
}

// TopQueries groups successful events by session id. Only sessions with a
// recorded start count; the newest hundred are ranked.
func TopQueries(events []core.AuditEvent) TopQueriesReport {
	index := map[string]*QueryStat{}
	var order []*QueryStat

	for i := range events {
		e := &events[i]
		if e.Status != core.StatusSuccess || e.SessionID == "" {
			continue
		}
		q, ok := index[e.SessionID]
		if !ok {
			q = &QueryStat{SessionID: e.SessionID}
			index[e.SessionID] = q
			order = append(order, q)
		}

		q.TotalCostUSD += core.DerefFloat64(e.EstimatedCostUSD)
		q.TotalTimeMS += core.DerefInt64(e.ExecutionTimeMS)
		if e.PromptTokens != nil && e.CompletionTokens != nil {
			q.TotalTokens += *e.PromptTokens + *e.CompletionTokens
		}

		switch e.EventType {
		case core.EventQuerySessionStart:
			if !q.started || e.Timestamp.After(q.Timestamp) {
				q.started = true
				q.Timestamp = e.Timestamp
				q.Catalog = e.Catalog
				q.SchemaName = e.SchemaName
				q.TableName = e.TableName
			}
		case core.EventSQLGeneration:
			q.GeneratedSQL = e.GeneratedSQL
			q.BusinessLogic = e.BusinessLogic
		case core.EventSQLExecution:
			q.RowCount = maxInt(q.RowCount, e.RowCount)
			q.SQLExecutionTimeMS = maxInt(q.SQLExecutionTimeMS, e.ExecutionTimeMS)
		}
	}

	queries := []QueryStat{}
	for _, q := range order {
		if q.started {
			queries = append(queries, *q)
		}
	}
	queries = topN(queries, queryLimit, func(a, b QueryStat) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	var withExec, withRows []QueryStat
	for _, q := range queries {
		if core.DerefInt64(q.SQLExecutionTimeMS) != 0 {
			withExec = append(withExec, q)
		}
		if core.DerefInt64(q.RowCount) != 0 {
			withRows = append(withRows, q)
		}
	}

	return TopQueriesReport{
		MostCostly: topN(queries, queryTop, func(a, b QueryStat) int {
			return cmp.Compare(b.TotalCostUSD, a.TotalCostUSD)
		}),
		SlowestTotalTime: topN(queries, queryTop, func(a, b QueryStat) int {
			return cmp.Compare(b.TotalTimeMS, a.TotalTimeMS)
		}),
		SlowestExecution: topN(withExec, queryTop, func(a, b QueryStat) int {
			return cmp.Compare(*b.SQLExecutionTimeMS, *a.SQLExecutionTimeMS)
		}),
		MostRowsReturned: topN(withRows, queryTop, func(a, b QueryStat) int {
			return cmp.Compare(*b.RowCount, *a.RowCount)
		}),
		RecentQueries: topN(queries, recentLimit, func(QueryStat, QueryStat) int { return 0 }),
	}
}

func maxInt(cur, v *int64) *int64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v > *cur {
		return core.Int64(*v)
	}
	return cur
}
