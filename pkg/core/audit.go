package core

import (
	"context"
	"time"
)

// EventType classifies an audit log entry.
type EventType string

// Audit event types.
const (
	EventBusinessLogicSuggestion EventType = "business_logic_suggestion"
	EventJoinConditionSuggestion EventType = "join_condition_suggestion"
	EventSQLGeneration           EventType = "sql_generation"
	EventSQLExecution            EventType = "sql_execution"
	EventQuerySessionStart       EventType = "query_session_start"
)

// IsLLM reports whether the event records a language model call.
func (e EventType) IsLLM() bool {
	switch e {
	case EventBusinessLogicSuggestion, EventJoinConditionSuggestion, EventSQLGeneration:
		return true
	}
	return false
}

// LLMEventTypes lists every event type that records a language model call.
func LLMEventTypes() []EventType {
	return []EventType{EventBusinessLogicSuggestion, EventJoinConditionSuggestion, EventSQLGeneration}
}

// EventStatus is the outcome of an audited operation.
type EventStatus string

// Audit event statuses.
const (
	StatusSuccess EventStatus = "success"
	StatusError   EventStatus = "error"
)

// AuditEvent is one row of the audit log.
// Optional numeric fields are pointers so that "not recorded" stays distinct from zero.
type AuditEvent struct {
	LogID               string            `json:"log_id"`
	Timestamp           time.Time         `json:"timestamp"`
	EventType           EventType         `json:"event_type"`
	UserID              string            `json:"user_id,omitempty"`
	SessionID           string            `json:"session_id,omitempty"`
	Catalog             string            `json:"catalog,omitempty"`
	SchemaName          string            `json:"schema_name,omitempty"`
	TableName           string            `json:"table_name,omitempty"`
	Columns             []string          `json:"columns,omitempty"`
	BusinessLogic       string            `json:"business_logic,omitempty"`
	GeneratedSQL        string            `json:"generated_sql,omitempty"`
	ModelID             string            `json:"model_id,omitempty"`
	ExecutionTimeMS     *int64            `json:"execution_time_ms"`
	RowCount            *int64            `json:"row_count"`
	Status              EventStatus       `json:"status"`
	ErrorMessage        string            `json:"error_message,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	PromptTokens        *int64            `json:"prompt_tokens"`
	CompletionTokens    *int64            `json:"completion_tokens"`
	TotalTokens         *int64            `json:"total_tokens"`
	EstimatedCostUSD    *float64          `json:"estimated_cost_usd"`
	BusinessLogicLength *int64            `json:"business_logic_length"`
	GeneratedSQLLength  *int64            `json:"generated_sql_length"`
}

// SetTable copies a table reference onto the event.
func (e *AuditEvent) SetTable(t TableRef) {
	e.Catalog = t.Catalog
	e.SchemaName = t.Schema
	e.TableName = t.Table
}

// SetUsage records token counts and the estimated cost.
func (e *AuditEvent) SetUsage(u Usage, costUSD float64) {
	e.PromptTokens = Int64(int64(u.PromptTokens))
	e.CompletionTokens = Int64(int64(u.CompletionTokens))
	e.TotalTokens = Int64(int64(u.TotalTokens))
	e.EstimatedCostUSD = Float64(costUSD)
}

// EventFilter narrows ListEvents.
type EventFilter struct {
	Types  []EventType
	Status EventStatus
	// Limit caps the number of events; zero means no limit.
	Limit int
	// Newest selects the most recent events first. Results are always
	// returned in the order selected.
	Newest bool
}

// AuditStore persists and retrieves audit events.
type AuditStore interface {
	Record(ctx context.Context, event *AuditEvent) error
	ListEvents(ctx context.Context, filter EventFilter) ([]AuditEvent, error)
	Close() error
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// DerefInt64 returns *p or zero.
func DerefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// DerefFloat64 returns *p or zero.
func DerefFloat64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
