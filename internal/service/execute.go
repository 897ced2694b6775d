package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

// ExecuteSQL runs a statement and returns at most the configured number of rows.
func (s *Service) ExecuteSQL(ctx context.Context, attr Attribution, req ExecuteRequest) (*ExecuteResponse, error) {
	query := strings.TrimSpace(req.SQLQuery)
	if query == "" {
		return nil, invalid("sql_query", "is required")
	}
	if s.readOnly {
		if err := warehouse.CheckReadOnly(query); err != nil {
			s.record(ctx, attr, &core.AuditEvent{
				EventType:    core.EventSQLExecution,
				GeneratedSQL: query,
				Status:       core.StatusError,
				ErrorMessage: err.Error(),
			})
			s.logger.Warn("rejected SQL statement", "error", err)
			return nil, &ValidationError{Field: "sql_query", Message: err.Error(), Err: err}
		}
	}

	start := s.now()
	event := &core.AuditEvent{
		EventType:    core.EventSQLExecution,
		GeneratedSQL: query,
	}

	result, err := s.execute(ctx, query)
	event.ExecutionTimeMS = s.elapsedMS(start)
	if err != nil {
		event.Status = core.StatusError
		event.ErrorMessage = err.Error()
		s.record(ctx, attr, event)
		s.logger.Error("failed to execute SQL", "error", err)
		return nil, err
	}

	event.Status = core.StatusSuccess
	event.RowCount = core.Int64(int64(len(result.Rows)))
	s.record(ctx, attr, event)

	s.logger.Info("SQL executed", "columns", len(result.Columns), "rows", len(result.Rows),
		"truncated", result.Truncated, "elapsed_ms", *event.ExecutionTimeMS)

	return &ExecuteResponse{
		Columns:   result.Columns,
		Rows:      result.Rows,
		RowCount:  len(result.Rows),
		Truncated: result.Truncated,
	}, nil
}

func (s *Service) execute(ctx context.Context, query string) (*warehouse.Result, error) {
	w, err := s.ensureWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	result, err := w.Query(ctx, query, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("failed to execute SQL: %w", err)
	}
	return result, nil
}
