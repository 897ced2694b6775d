package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// Broadcaster is told when the audit log changes.
type Broadcaster interface {
	Broadcast()
}

// Recorder writes audit events without ever failing the caller.
// Failed writes are logged; successful writes are broadcast.
type Recorder struct {
	store  core.AuditStore
	notify Broadcaster
	logger *slog.Logger
}

// NewRecorder wraps store. notify and logger may be nil.
func NewRecorder(store core.AuditStore, notify Broadcaster, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: store, notify: notify, logger: logger}
}

// Record persists e. It reports whether the write succeeded.
// The write is detached from ctx cancellation so a client hanging up
// after the work is done does not lose its audit row.
func (r *Recorder) Record(ctx context.Context, e *core.AuditEvent) bool {
	if r == nil || r.store == nil {
		return false
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.store.Record(writeCtx, e); err != nil {
		r.logger.Error("failed to record audit event",
			slog.String("event_type", string(e.EventType)),
			slog.String("session_id", e.SessionID),
			slog.String("error", err.Error()))
		return false
	}

	r.logger.Debug("audit event recorded",
		slog.String("event_type", string(e.EventType)),
		slog.String("status", string(e.Status)),
		slog.String("log_id", e.LogID))

	if r.notify != nil {
		r.notify.Broadcast()
	}
	return true
}

// Store returns the underlying store.
func (r *Recorder) Store() core.AuditStore {
	return r.store
}
