package server

import (
	"net/http"
	"time"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/internal/service"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// DashboardSignals is the signal patch pushed to live dashboards.
type DashboardSignals struct {
	Dashboard DashboardSnapshot `json:"dashboard"`
}

// DashboardSnapshot holds the headline numbers of the dashboard.
type DashboardSnapshot struct {
	Statistics analytics.DashboardStats `json:"statistics"`
	Warehouse  service.WarehouseStatus  `json:"warehouse"`
	UpdatedAt  string                   `json:"updated_at"`
}

func (s *Server) snapshot(r *http.Request) DashboardSignals {
	stats, err := s.svc.DashboardStatistics(r.Context())
	if err != nil {
		s.logger.Debug("dashboard statistics unavailable", "error", err)
	}
	return DashboardSignals{Dashboard: DashboardSnapshot{
		Statistics: stats,
		Warehouse:  s.svc.WarehouseStatus(r.Context()),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}}
}

// handleEvents is the long-lived SSE endpoint for the dashboard.
// It pushes a snapshot on connect, whenever the audit log changes, and on
// every poll tick.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := s.notifier.Subscribe(r.Context())
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	send := func() bool {
		if err := sse.MarshalAndPatchSignals(s.snapshot(r)); err != nil {
			s.logger.Debug("dashboard stream closed", "error", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok || !send() {
				return
			}
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}
