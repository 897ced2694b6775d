package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/leapstack-labs/queryforge/internal/cli/testutil"
	"github.com/leapstack-labs/queryforge/internal/service"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewServeCommand(), "serve", []string{"port", "static-dir", "session-secret", "models-file", "default-model", "max-rows", "read-only"}},
		{NewModelsCommand(), "models", []string{"format"}},
		{NewHistoryCommand(), "history", []string{"format", "limit"}},
		{NewStatsCommand(), "stats", []string{"format"}},
		{NewStatusCommand(), "status", []string{"format"}},
		{NewMigrateCommand(), "migrate", nil},
		{NewVersionCommand(BuildInfo{Version: "test"}), "version", []string{"format"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestEventTitle(t *testing.T) {
	assert.Equal(t, "SQL Generation", eventTitle(core.EventSQLGeneration))
	assert.Equal(t, "Business Logic Suggestion", eventTitle(core.EventBusinessLogicSuggestion))
	assert.Equal(t, "Query Session Start", eventTitle(core.EventQuerySessionStart))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "one two", truncate("one\n  two", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func sampleHistory() analytics.History {
	rows := int64(12)
	return analytics.History{
		TotalCount: 1,
		QuerySessions: []analytics.QuerySession{{
			SessionID:               "s-1",
			Timestamp:               time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Catalog:                 "main",
			SchemaName:              "sales",
			TableName:               "orders",
			BusinessLogic:           "Revenue by month",
			BusinessLogicSuggestion: &core.AuditEvent{EventType: core.EventBusinessLogicSuggestion},
			SQLGeneration:           &core.AuditEvent{EventType: core.EventSQLGeneration},
			SQLExecution:            &core.AuditEvent{EventType: core.EventSQLExecution},
			TotalCostUSD:            0.000123,
			TotalTokens:             420,
			RowCount:                &rows,
			Status:                  "success",
		}},
	}
}

func TestRenderHistory(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeMarkdown, false)
		require.NoError(t, renderHistory(tr.Renderer, sampleHistory()))

		out := tr.Output()
		assert.Contains(t, out, "## Query history (1 of 1 sessions)")
		assert.Contains(t, out, "main.sales.orders")
		assert.Contains(t, out, "Business Logic Suggestion → SQL Generation → SQL Execution")
		assert.Contains(t, out, "$0.000123")
		testutil.AssertNoANSI(t, out)
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeJSON, false)
		require.NoError(t, renderHistory(tr.Renderer, sampleHistory()))

		var got analytics.History
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		assert.Equal(t, 1, got.TotalCount)
		assert.Equal(t, "s-1", got.QuerySessions[0].SessionID)
	})

	t.Run("empty", func(t *testing.T) {
		tr := testutil.NewTestRenderer(output.ModeText, false)
		require.NoError(t, renderHistory(tr.Renderer, analytics.History{}))
		assert.Contains(t, tr.Output(), "No query sessions")
	})
}

func TestRenderStatus(t *testing.T) {
	id := "abc"
	status := service.WarehouseStatus{
		WarehouseID:   &id,
		WarehouseName: "analytics",
		Status:        service.WarehouseStopped,
		HTTPPath:      "/sql/1.0/warehouses/abc",
		Error:         "connection refused",
	}

	tr := testutil.NewTestRenderer(output.ModeText, false)
	require.NoError(t, renderStatus(tr.Renderer, status))
	out := tr.Output()
	assert.Contains(t, out, "Status: STOPPED")
	assert.Contains(t, out, "Error: connection refused")
	testutil.AssertNoANSI(t, out)
}

func TestHistoryCommand(t *testing.T) {
	project := testutil.SetupTestProject(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project.Seed(t,
		core.AuditEvent{
			EventType: core.EventBusinessLogicSuggestion, SessionID: "s-1", Timestamp: base,
			Catalog: "main", SchemaName: "sales", TableName: "orders", Status: core.StatusSuccess,
		},
		core.AuditEvent{
			EventType: core.EventSQLExecution, SessionID: "s-1", Timestamp: base.Add(time.Minute),
			GeneratedSQL: "SELECT 1", RowCount: core.Int64(3), Status: core.StatusSuccess,
		},
		core.AuditEvent{
			EventType: core.EventBusinessLogicSuggestion, SessionID: "s-2", Timestamp: base.Add(2 * time.Minute),
			Catalog: "main", SchemaName: "sales", TableName: "customers", Status: core.StatusSuccess,
		},
	)

	cmd := NewHistoryCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--format", "json", "--limit", "1"})
	require.NoError(t, cmd.ExecuteContext(project.Context()))

	var got analytics.History
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.TotalCount)
	require.Len(t, got.QuerySessions, 1)
	assert.Equal(t, "customers", got.QuerySessions[0].TableName)
	assert.Equal(t, analytics.SessionIncomplete, got.QuerySessions[0].Status)
}

func TestHistoryCommand_NegativeLimit(t *testing.T) {
	project := testutil.SetupTestProject(t)
	cmd := NewHistoryCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--limit", "-1"})
	assert.Error(t, cmd.ExecuteContext(project.Context()))
}

func TestStatsCommand(t *testing.T) {
	project := testutil.SetupTestProject(t)
	project.Seed(t,
		core.AuditEvent{
			EventType: core.EventSQLGeneration, SessionID: "s-1", ModelID: "gemini-2.5-flash",
			PromptTokens: core.Int64(100), CompletionTokens: core.Int64(20), TotalTokens: core.Int64(120),
			EstimatedCostUSD: core.Float64(0.00008), Status: core.StatusSuccess,
		},
		core.AuditEvent{
			EventType: core.EventSQLExecution, SessionID: "s-1", RowCount: core.Int64(5),
			ExecutionTimeMS: core.Int64(40), Status: core.StatusSuccess,
		},
	)

	cmd := NewStatsCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--format", "json"})
	require.NoError(t, cmd.ExecuteContext(project.Context()))

	var got StatsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, int64(1), got.Dashboard.TotalExecutions)
	assert.Equal(t, int64(1), got.Dashboard.TotalLLMCalls)
	require.Len(t, got.Costs.Models, 1)
	assert.Equal(t, "gemini-2.5-flash", got.Costs.Models[0].ModelID)
}

func TestMigrateCommand(t *testing.T) {
	project := testutil.SetupTestProject(t)

	cmd := NewMigrateCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.ExecuteContext(project.Context()))
	assert.Contains(t, buf.String(), project.AuditPath)
	assert.Contains(t, buf.String(), "at version")
}

func TestStatusCommand_NotConfigured(t *testing.T) {
	project := testutil.SetupTestProject(t)

	cmd := NewStatusCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--format", "json"})
	err := cmd.ExecuteContext(project.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.WarehouseUnknown)

	var got service.WarehouseStatus
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Not configured", got.WarehouseName)
}

func TestModelsCommand(t *testing.T) {
	project := testutil.SetupTestProject(t)
	project.Config.LLM.GeminiAPIKey = ""
	project.Config.LLM.BaseURL = "http://127.0.0.1:1/serving-endpoints"

	cmd := NewModelsCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--format", "json"})
	require.NoError(t, cmd.ExecuteContext(project.Context()))

	var rows []ModelRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.NotEmpty(t, rows)

	byID := map[string]ModelRow{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.True(t, byID["databricks-llama-4-maverick"].Default)
	assert.True(t, byID["databricks-llama-4-maverick"].Enabled)
	assert.False(t, byID["gemini-2.5-flash"].Enabled)
	assert.InDelta(t, 0.30, byID["gemini-2.5-flash"].InputPricePerM, 1e-9)
}
