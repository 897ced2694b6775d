package server

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/debug/config", s.handleDebugConfig)
		r.Get("/warehouse-status", s.handleWarehouseStatus)
		r.Get("/models", s.handleModels)

		r.Get("/catalogs", s.handleCatalogs)
		r.Get("/catalogs/{catalog}/schemas", s.handleSchemas)
		r.Get("/catalogs/{catalog}/schemas/{schema}/tables", s.handleTables)
		r.Get("/catalogs/{catalog}/schemas/{schema}/tables/{table}/columns", s.handleColumns)

		r.Post("/suggest-business-logic", s.handleSuggestBusinessLogic)
		r.Post("/suggest-join-conditions", s.handleSuggestJoinConditions)
		r.Post("/generate-sql", s.handleGenerateSQL)
		r.Post("/generate-sql-multi", s.handleGenerateSQL)
		r.Post("/execute-sql", s.handleExecuteSQL)

		r.Get("/dashboard-statistics", s.handleDashboardStatistics)
		r.Get("/query-history", s.handleQueryHistory)
		r.Get("/llm-analytics", s.handleLLMAnalytics)
		r.Get("/llm-costs-by-model", s.handleLLMCostsByModel)
		r.Get("/analytics/llm-usage", s.handleLLMUsage)
		r.Get("/analytics/top-queries", s.handleTopQueries)
		r.Get("/analytics/summary", s.handleSummary)

		r.Get("/events", s.handleEvents)

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	if info, err := os.Stat(s.staticDir); s.staticDir != "" && err == nil && info.IsDir() {
		s.logger.Debug("serving SPA", "dir", s.staticDir)
		r.NotFound(spaHandler(s.staticDir))
	} else {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusNotFound, "Not found")
		})
	}
}
