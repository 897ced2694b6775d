package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/pkg/core"
)

// ErrAuditNotConfigured is returned by analytics when no audit store is attached.
var ErrAuditNotConfigured = errors.New("audit store not configured")

func (s *Service) events(ctx context.Context, filter core.EventFilter) ([]core.AuditEvent, error) {
	if s.recorder == nil || s.recorder.Store() == nil {
		return nil, ErrAuditNotConfigured
	}
	events, err := s.recorder.Store().ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	if filter.Newest {
		slices.Reverse(events)
	}
	return events, nil
}

// DashboardStatistics aggregates the whole audit log.
func (s *Service) DashboardStatistics(ctx context.Context) (analytics.DashboardStats, error) {
	events, err := s.events(ctx, core.EventFilter{})
	if err != nil {
		return analytics.DashboardStats{}, err
	}
	stats := analytics.DashboardStatistics(events)
	s.logger.Debug("dashboard statistics",
		"total_executions", stats.TotalExecutions, "total_llm_calls", stats.TotalLLMCalls,
		"success_rate", stats.SuccessRate)
	return stats, nil
}

// QueryHistory groups the newest events into query sessions.
func (s *Service) QueryHistory(ctx context.Context) (analytics.History, error) {
	events, err := s.events(ctx, core.EventFilter{Newest: true, Limit: analytics.HistoryLimit})
	if err != nil {
		return analytics.History{}, err
	}
	return analytics.QueryHistory(events), nil
}

// LLMAnalytics lists recent model calls with aggregate totals.
func (s *Service) LLMAnalytics(ctx context.Context) (analytics.LLMReport, error) {
	events, err := s.events(ctx, core.EventFilter{Types: core.LLMEventTypes()})
	if err != nil {
		return analytics.LLMReport{}, err
	}
	return analytics.LLMAnalytics(events), nil
}

// LLMCostsByModel totals successful model spend per model.
func (s *Service) LLMCostsByModel(ctx context.Context) (analytics.CostReport, error) {
	events, err := s.events(ctx, core.EventFilter{Types: core.LLMEventTypes(), Status: core.StatusSuccess})
	if err != nil {
		return analytics.CostsByModel(nil), err
	}
	return analytics.CostsByModel(events), nil
}

// LLMUsage ranks models by usage, cost and latency.
func (s *Service) LLMUsage(ctx context.Context) (analytics.UsageReport, error) {
	events, err := s.events(ctx, core.EventFilter{Types: core.LLMEventTypes(), Status: core.StatusSuccess})
	if err != nil {
		return analytics.UsageReport{}, err
	}
	return analytics.LLMUsage(events), nil
}

// TopQueries ranks recent query sessions.
func (s *Service) TopQueries(ctx context.Context) (analytics.TopQueriesReport, error) {
	events, err := s.events(ctx, core.EventFilter{Status: core.StatusSuccess})
	if err != nil {
		return analytics.TopQueriesReport{}, err
	}
	return analytics.TopQueries(events), nil
}

// Summary compares cost, time and volume across the audit log.
func (s *Service) Summary(ctx context.Context) (analytics.SummaryStats, error) {
	events, err := s.events(ctx, core.EventFilter{})
	if err != nil {
		return analytics.SummaryStats{}, err
	}
	return analytics.Summary(events), nil
}
