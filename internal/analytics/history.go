package analytics

import (
	"slices"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// HistoryLimit is how many of the newest events QueryHistory is given.
const HistoryLimit = 200

// SessionIncomplete marks a session that never reached execution.
const SessionIncomplete = "incomplete"

// QuerySession is one suggestion, generation and execution round trip.
type QuerySession struct {
	SessionID               string           `json:"session_id"`
	Timestamp               time.Time        `json:"timestamp"`
	TableName               string           `json:"table_name"`
	Catalog                 string           `json:"catalog"`
	SchemaName              string           `json:"schema_name"`
	Columns                 []string         `json:"columns"`
	BusinessLogic           string           `json:"business_logic"`
	GeneratedSQL            string           `json:"generated_sql"`
	BusinessLogicSuggestion *core.AuditEvent `json:"business_logic_suggestion"`
	JoinConditionSuggestion *core.AuditEvent `json:"join_condition_suggestion,omitempty"`
	SQLGeneration           *core.AuditEvent `json:"sql_generation"`
	SQLExecution            *core.AuditEvent `json:"sql_execution"`
	TotalCostUSD            float64          `json:"total_cost_usd"`
	TotalTokens             int64            `json:"total_tokens"`
	TotalTimeMS             int64            `json:"total_time_ms"`
	RowCount                *int64           `json:"row_count"`
	Status                  string           `json:"status"`
}

// History is the query history page payload.
type History struct {
	QuerySessions []QuerySession `json:"query_sessions"`
	TotalCount    int            `json:"total_count"`
}

// QueryHistory folds events into sessions, most recent first.
//
// A business logic suggestion always opens a session. A generation joins the
// open session or opens its own. An execution closes the open session, or is
// listed on its own when nothing is open.
func QueryHistory(events []core.AuditEvent) History {
	sessions := []QuerySession{}
	var open *QuerySession

	closeOpen := func() {
		if open != nil {
			sessions = append(sessions, *open)
			open = nil
		}
	}

	for i := range events {
		e := events[i]

		switch e.EventType {
		case core.EventBusinessLogicSuggestion:
			closeOpen()
			open = newSession(&e)
			open.BusinessLogicSuggestion = &e
			open.accumulate(&e)

		case core.EventJoinConditionSuggestion:
			if open != nil {
				open.JoinConditionSuggestion = &e
				open.accumulate(&e)
			}

		case core.EventSQLGeneration:
			if open == nil {
				open = newSession(&e)
			}
			open.SQLGeneration = &e
			open.GeneratedSQL = e.GeneratedSQL
			if open.BusinessLogic == "" {
				open.BusinessLogic = e.BusinessLogic
			}
			open.accumulate(&e)

		case core.EventSQLExecution:
			if open == nil {
				s := newSession(&e)
				s.GeneratedSQL = e.GeneratedSQL
				s.SQLExecution = &e
				s.TotalTimeMS = core.DerefInt64(e.ExecutionTimeMS)
				s.RowCount = e.RowCount
				s.Status = string(e.Status)
				sessions = append(sessions, *s)
				continue
			}
			open.SQLExecution = &e
			open.TotalTimeMS += core.DerefInt64(e.ExecutionTimeMS)
			open.RowCount = e.RowCount
			open.Status = string(e.Status)
			closeOpen()
		}
	}
	closeOpen()

	slices.Reverse(sessions)
	return History{QuerySessions: sessions, TotalCount: len(sessions)}
}

func newSession(e *core.AuditEvent) *QuerySession {
	id := e.SessionID
	if id == "" {
		id = e.LogID
	}
	return &QuerySession{
		SessionID:     id,
		Timestamp:     e.Timestamp,
		TableName:     e.TableName,
		Catalog:       e.Catalog,
		SchemaName:    e.SchemaName,
		Columns:       e.Columns,
		BusinessLogic: e.BusinessLogic,
		Status:        SessionIncomplete,
	}
}

func (s *QuerySession) accumulate(e *core.AuditEvent) {
	s.TotalCostUSD += core.DerefFloat64(e.EstimatedCostUSD)
	s.TotalTokens += core.DerefInt64(e.TotalTokens)
	s.TotalTimeMS += core.DerefInt64(e.ExecutionTimeMS)
}
