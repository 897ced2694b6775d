package analytics

import (
	"testing"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type eventOpt func(*core.AuditEvent)

func ev(typ core.EventType, minute int, opts ...eventOpt) core.AuditEvent {
	e := core.AuditEvent{
		LogID:     string(typ) + "-" + time.Duration(minute).String(),
		EventType: typ,
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
		Status:    core.StatusSuccess,
	}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func session(id string) eventOpt { return func(e *core.AuditEvent) { e.SessionID = id } }
func table(name string) eventOpt { return func(e *core.AuditEvent) { e.TableName = name } }
func model(id string) eventOpt   { return func(e *core.AuditEvent) { e.ModelID = id } }
func elapsed(ms int64) eventOpt  { return func(e *core.AuditEvent) { e.ExecutionTimeMS = core.Int64(ms) } }
func rows(n int64) eventOpt      { return func(e *core.AuditEvent) { e.RowCount = core.Int64(n) } }
func sqlText(s string) eventOpt  { return func(e *core.AuditEvent) { e.GeneratedSQL = s } }
func logic(s string) eventOpt    { return func(e *core.AuditEvent) { e.BusinessLogic = s } }
func failed() eventOpt           { return func(e *core.AuditEvent) { e.Status = core.StatusError } }
func usage(p, c int64, cost float64) eventOpt {
	return func(e *core.AuditEvent) {
		e.SetUsage(core.Usage{PromptTokens: int(p), CompletionTokens: int(c), TotalTokens: int(p + c)}, cost)
	}
}

func TestDashboardStatistics(t *testing.T) {
	events := []core.AuditEvent{
		ev(core.EventBusinessLogicSuggestion, 0, table("orders")),
		ev(core.EventSQLGeneration, 1, table("orders")),
		ev(core.EventSQLExecution, 2, table("orders"), elapsed(100), rows(10)),
		ev(core.EventSQLExecution, 3, table("customers"), elapsed(201), rows(5)),
		ev(core.EventSQLExecution, 4, table("orders"), elapsed(900), rows(99), failed()),
		ev(core.EventQuerySessionStart, 5),
	}

	got := DashboardStatistics(events)
	assert.Equal(t, DashboardStats{
		TotalExecutions:      3,
		TotalLLMCalls:        2,
		AvgExecutionTimeMS:   150,
		SuccessRate:          83.33,
		TotalRowsReturned:    15,
		UniqueTablesAnalyzed: 2,
	}, got)
}

func TestDashboardStatistics_Empty(t *testing.T) {
	assert.Equal(t, DashboardStats{}, DashboardStatistics(nil))
}

func TestQueryHistory(t *testing.T) {
	events := []core.AuditEvent{
		// Standalone execution with nothing open.
		ev(core.EventSQLExecution, 0, session("s0"), sqlText("SELECT 0"), elapsed(5), rows(1)),
		// Full round trip.
		ev(core.EventBusinessLogicSuggestion, 1, session("s1"), table("orders"), logic("revenue"),
			usage(100, 20, 0.01), elapsed(300)),
		ev(core.EventSQLGeneration, 2, session("s1"), sqlText("SELECT 1"), usage(200, 50, 0.02), elapsed(700)),
		ev(core.EventSQLExecution, 3, session("s1"), elapsed(40), rows(12)),
		// Suggestion that is abandoned by a new suggestion.
		ev(core.EventBusinessLogicSuggestion, 4, session("s2"), table("customers"), usage(10, 10, 0.001)),
		ev(core.EventBusinessLogicSuggestion, 5, session("s3"), table("products")),
		ev(core.EventQuerySessionStart, 6, session("s3")),
		ev(core.EventSQLGeneration, 7, session("s3"), sqlText("SELECT 3"), failed()),
	}

	h := QueryHistory(events)
	require.Equal(t, 4, h.TotalCount)
	require.Len(t, h.QuerySessions, 4)

	// Most recent first.
	assert.Equal(t, []string{"s3", "s2", "s1", "s0"}, []string{
		h.QuerySessions[0].SessionID, h.QuerySessions[1].SessionID,
		h.QuerySessions[2].SessionID, h.QuerySessions[3].SessionID,
	})

	trailing := h.QuerySessions[0]
	assert.Equal(t, SessionIncomplete, trailing.Status)
	assert.Equal(t, "SELECT 3", trailing.GeneratedSQL)
	assert.NotNil(t, trailing.SQLGeneration)
	assert.Nil(t, trailing.SQLExecution)

	abandoned := h.QuerySessions[1]
	assert.Equal(t, SessionIncomplete, abandoned.Status)
	assert.Equal(t, "customers", abandoned.TableName)
	assert.InDelta(t, 0.001, abandoned.TotalCostUSD, 1e-12)

	full := h.QuerySessions[2]
	assert.Equal(t, "success", full.Status)
	assert.Equal(t, "orders", full.TableName)
	assert.Equal(t, "revenue", full.BusinessLogic)
	assert.Equal(t, "SELECT 1", full.GeneratedSQL)
	assert.InDelta(t, 0.03, full.TotalCostUSD, 1e-12)
	assert.Equal(t, int64(370), full.TotalTokens)
	assert.Equal(t, int64(1040), full.TotalTimeMS)
	assert.Equal(t, int64(12), core.DerefInt64(full.RowCount))
	assert.NotNil(t, full.BusinessLogicSuggestion)
	assert.NotNil(t, full.SQLExecution)

	standalone := h.QuerySessions[3]
	assert.Equal(t, "success", standalone.Status)
	assert.Equal(t, "SELECT 0", standalone.GeneratedSQL)
	assert.Zero(t, standalone.TotalCostUSD)
	assert.Equal(t, int64(5), standalone.TotalTimeMS)
}

func TestQueryHistory_SessionIDFallsBackToLogID(t *testing.T) {
	h := QueryHistory([]core.AuditEvent{ev(core.EventSQLGeneration, 0)})
	require.Len(t, h.QuerySessions, 1)
	assert.Equal(t, h.QuerySessions[0].SQLGeneration.LogID, h.QuerySessions[0].SessionID)
}

func TestQueryHistory_Empty(t *testing.T) {
	h := QueryHistory(nil)
	assert.NotNil(t, h.QuerySessions)
	assert.Zero(t, h.TotalCount)
}

func TestLLMAnalytics(t *testing.T) {
	events := []core.AuditEvent{
		ev(core.EventBusinessLogicSuggestion, 0, model("a"), usage(100, 10, 0.00001234)),
		ev(core.EventSQLExecution, 1),
		ev(core.EventSQLGeneration, 2, model("b"), usage(300, 30, 0.00003)),
		ev(core.EventSQLGeneration, 3, model("b"), usage(999, 999, 1), failed()),
	}

	r := LLMAnalytics(events)
	require.Len(t, r.Details, 3)
	assert.Equal(t, core.StatusError, r.Details[0].Status, "details are newest first")
	assert.Equal(t, LLMAggregates{
		TotalPromptTokens:     400,
		TotalCompletionTokens: 40,
		TotalTokens:           440,
		TotalCostUSD:          0,
		AvgCostPerCallUSD:     0.000021,
		TotalLLMCalls:         2,
	}, r.Aggregates)
}

func TestLLMAnalytics_DetailLimit(t *testing.T) {
	events := make([]core.AuditEvent, 0, DetailLimit+20)
	for i := 0; i < DetailLimit+20; i++ {
		events = append(events, ev(core.EventSQLGeneration, i))
	}
	r := LLMAnalytics(events)
	assert.Len(t, r.Details, DetailLimit)
	assert.Equal(t, int64(DetailLimit+20), r.Aggregates.TotalLLMCalls)
}

func modelEvents() []core.AuditEvent {
	return []core.AuditEvent{
		ev(core.EventSQLGeneration, 0, model("cheap"), usage(100, 10, 0.01), elapsed(100)),
		ev(core.EventSQLGeneration, 1, model("cheap"), usage(100, 10, 0.01), elapsed(300)),
		ev(core.EventSQLGeneration, 2, model("cheap"), usage(100, 10, 0.01)),
		ev(core.EventBusinessLogicSuggestion, 3, model("pricey"), usage(50, 50, 0.5), elapsed(2000)),
		ev(core.EventJoinConditionSuggestion, 4, model("untimed"), usage(1, 1, 0.02)),
		ev(core.EventSQLGeneration, 5, model("broken"), failed()),
		ev(core.EventSQLGeneration, 6, usage(1, 1, 9)),
		ev(core.EventSQLExecution, 7, model("cheap")),
	}
}

func TestCostsByModel(t *testing.T) {
	r := CostsByModel(modelEvents())
	require.Len(t, r.Models, 3)
	assert.Equal(t, "pricey", r.Models[0].ModelID)
	assert.Equal(t, "cheap", r.Models[1].ModelID)
	assert.Equal(t, int64(3), r.Models[1].CallCount)
	assert.Equal(t, int64(330), r.Models[1].TotalTokens)
	assert.Equal(t, "untimed", r.Models[2].ModelID)

	assert.InDelta(t, 0.55, r.TotalCost, 1e-9)
	assert.Equal(t, int64(351), r.TotalPromptTokens)
	assert.Equal(t, int64(81), r.TotalCompletionTokens)
}

func TestCostsByModel_Empty(t *testing.T) {
	r := CostsByModel(nil)
	assert.NotNil(t, r.Models)
	assert.Zero(t, r.TotalCost)
}

func TestLLMUsage(t *testing.T) {
	r := LLMUsage(modelEvents())

	ids := func(us []ModelUsage) []string {
		out := make([]string, len(us))
		for i, u := range us {
			out[i] = u.ModelID
		}
		return out
	}

	assert.Equal(t, []string{"cheap", "pricey", "untimed"}, ids(r.AllModels))
	assert.Equal(t, []string{"cheap", "pricey", "untimed"}, ids(r.MostUsed))
	assert.Equal(t, []string{"pricey", "cheap", "untimed"}, ids(r.MostCostly))
	assert.Equal(t, []string{"pricey", "cheap", "untimed"}, ids(r.Slowest))
	assert.Equal(t, []string{"cheap", "pricey", "untimed"}, ids(r.Fastest))

	require.NotNil(t, r.AllModels[0].AvgExecutionTime)
	assert.InDelta(t, 200.0, *r.AllModels[0].AvgExecutionTime, 1e-9)
	assert.Nil(t, r.AllModels[2].AvgExecutionTime)
}

func TestLLMUsage_TopFive(t *testing.T) {
	var events []core.AuditEvent
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		events = append(events, ev(core.EventSQLGeneration, i, model(id)))
	}
	r := LLMUsage(events)
	assert.Len(t, r.AllModels, 7)
	assert.Len(t, r.MostUsed, 5)
	assert.Len(t, r.Fastest, 5)
}

func TestTopQueries(t *testing.T) {
	events := []core.AuditEvent{
		ev(core.EventQuerySessionStart, 0, session("s1"), table("orders")),
		ev(core.EventSQLGeneration, 1, session("s1"), sqlText("SELECT 1"), logic("rev"), usage(100, 20, 0.05), elapsed(500)),
		ev(core.EventSQLExecution, 2, session("s1"), elapsed(80), rows(7)),

		ev(core.EventQuerySessionStart, 3, session("s2"), table("customers")),
		ev(core.EventSQLGeneration, 4, session("s2"), usage(10, 5, 0.2), elapsed(100)),
		ev(core.EventSQLExecution, 5, session("s2"), elapsed(999), rows(0), failed()),

		// No start event: never ranked.
		ev(core.EventSQLGeneration, 6, session("s3"), usage(1, 1, 5)),
	}

	r := TopQueries(events)
	require.Len(t, r.RecentQueries, 2)
	assert.Equal(t, "s2", r.RecentQueries[0].SessionID)
	assert.Equal(t, "s1", r.RecentQueries[1].SessionID)

	require.Len(t, r.MostCostly, 2)
	assert.Equal(t, "s2", r.MostCostly[0].SessionID)

	require.Len(t, r.SlowestTotalTime, 2)
	assert.Equal(t, "s1", r.SlowestTotalTime[0].SessionID)
	assert.Equal(t, int64(580), r.SlowestTotalTime[0].TotalTimeMS)

	require.Len(t, r.SlowestExecution, 1)
	assert.Equal(t, int64(80), *r.SlowestExecution[0].SQLExecutionTimeMS)

	require.Len(t, r.MostRowsReturned, 1)
	s1 := r.MostRowsReturned[0]
	assert.Equal(t, "orders", s1.TableName)
	assert.Equal(t, "SELECT 1", s1.GeneratedSQL)
	assert.Equal(t, "rev", s1.BusinessLogic)
	assert.Equal(t, int64(120), s1.TotalTokens)
	assert.Equal(t, int64(7), *s1.RowCount)
}

func TestTopQueries_Empty(t *testing.T) {
	r := TopQueries(nil)
	assert.NotNil(t, r.MostCostly)
	assert.NotNil(t, r.SlowestExecution)
	assert.NotNil(t, r.RecentQueries)
}

func TestSummary(t *testing.T) {
	events := []core.AuditEvent{
		ev(core.EventQuerySessionStart, 0, session("s1")),
		ev(core.EventSQLGeneration, 1, session("s1"), model("a"), usage(1000, 500, 0.3), elapsed(400)),
		ev(core.EventSQLExecution, 2, session("s1"), elapsed(100), rows(10)),
		ev(core.EventBusinessLogicSuggestion, 3, session("s2"), model("b"), usage(500, 0, 0.1), elapsed(1000)),
		ev(core.EventSQLExecution, 4, session("s2"), elapsed(5000), rows(30), failed()),
		ev(core.EventSQLExecution, 5, session("s2"), rows(20)),
	}

	s := Summary(events)
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(2), s.UniqueModelsUsed)
	require.NotNil(t, s.AvgCostPerQuery)
	assert.InDelta(t, 0.2, *s.AvgCostPerQuery, 1e-9)
	assert.InDelta(t, 0.3, *s.MaxCostQuery, 1e-9)
	assert.InDelta(t, 0.1, *s.MinCostQuery, 1e-9)
	assert.InDelta(t, 500.0, *s.AvgTimePerEvent, 1e-9)
	assert.Equal(t, int64(1000), *s.MaxTimeEvent)
	assert.Equal(t, int64(1500), *s.TotalPromptTokens)
	assert.Equal(t, int64(500), *s.TotalCompletionTokens)
	assert.InDelta(t, 15.0, *s.AvgRowsReturned, 1e-9)
	assert.InDelta(t, 2000/0.4, s.TokensPerDollar, 1e-6)
}

func TestSummary_Empty(t *testing.T) {
	s := Summary(nil)
	assert.Zero(t, s.TotalQueries)
	assert.Nil(t, s.AvgCostPerQuery)
	assert.Nil(t, s.MinCostQuery)
	assert.Nil(t, s.TotalPromptTokens)
	assert.Zero(t, s.TokensPerDollar)
}
