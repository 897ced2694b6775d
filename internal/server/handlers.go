package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/internal/service"
	"github.com/leapstack-labs/queryforge/pkg/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"timestamp":   time.Now().Format(time.RFC3339),
		"environment": s.env,
	})
}

func (s *Server) handleDebugConfig(w http.ResponseWriter, _ *http.Request) {
	info := s.debugInfo
	if info == nil {
		info = map[string]any{"env": s.env}
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleWarehouseStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.WarehouseStatus(r.Context()))
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]core.ModelInfo{"models": s.svc.ListModels()})
}

func (s *Server) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := s.svc.ListCatalogs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"catalogs": catalogs})
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := s.svc.ListSchemas(r.Context(), chi.URLParam(r, "catalog"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"schemas": schemas})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.svc.ListTables(r.Context(), chi.URLParam(r, "catalog"), chi.URLParam(r, "schema"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	ref := core.TableRef{
		Catalog: chi.URLParam(r, "catalog"),
		Schema:  chi.URLParam(r, "schema"),
		Table:   chi.URLParam(r, "table"),
	}
	columns, err := s.svc.ListColumns(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.ColumnInfo{"columns": columns})
}

func (s *Server) handleSuggestBusinessLogic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.SuggestionRequest
		SessionID string `json:"session_id"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pending := s.attribute(r, StepSuggest, req.SessionID)
	resp, err := s.svc.SuggestBusinessLogic(r.Context(), pending.attr, req.SuggestionRequest)
	s.commit(w, r, pending, err == nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestJoinConditions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.JoinRequest
		SessionID string `json:"session_id"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pending := s.attribute(r, StepSuggest, req.SessionID)
	resp, err := s.svc.SuggestJoinConditions(r.Context(), pending.attr, req.JoinRequest)
	s.commit(w, r, pending, err == nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateSQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.GenerateSQLRequest
		SessionID string `json:"session_id"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pending := s.attribute(r, StepGenerate, req.SessionID)
	resp, err := s.svc.GenerateSQL(r.Context(), pending.attr, req.GenerateSQLRequest)
	s.commit(w, r, pending, err == nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.ExecuteRequest
		SessionID string `json:"session_id"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pending := s.attribute(r, StepExecute, req.SessionID)
	resp, err := s.svc.ExecuteSQL(r.Context(), pending.attr, req.ExecuteRequest)
	s.commit(w, r, pending, err == nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDashboardStatistics answers with zeroed totals when the audit log is unreadable.
func (s *Server) handleDashboardStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.DashboardStatistics(r.Context())
	if err != nil {
		s.logger.Error("failed to compute dashboard statistics", "error", err)
		stats = analytics.DashboardStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.QueryHistory(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleLLMAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.LLMAnalytics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleLLMCostsByModel answers with empty totals when the audit log is unreadable.
func (s *Server) handleLLMCostsByModel(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.LLMCostsByModel(r.Context())
	if err != nil {
		s.logger.Error("failed to compute costs by model", "error", err)
		report = analytics.CostsByModel(nil)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLLMUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.LLMUsage(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTopQueries(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.TopQueries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
