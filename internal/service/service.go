// Package service implements the QueryForge operations behind the HTTP API.
// It ties together the warehouse, the LLM router and the audit log.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/llm"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

// DefaultMaxRows caps execute-sql results when Config.MaxRows is unset.
const DefaultMaxRows = 100

var (
	// ErrWarehouseNotConfigured is returned when warehouse credentials are missing.
	ErrWarehouseNotConfigured = errors.New("warehouse credentials not configured")

	// ErrLLMNotConfigured is returned when no model provider can serve a request.
	ErrLLMNotConfigured = llm.ErrNotConfigured

	// ErrReadOnly is returned when a statement would modify the warehouse.
	ErrReadOnly = warehouse.ErrReadOnly
)

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Config holds service dependencies and limits.
type Config struct {
	// Warehouse is used to connect lazily on first use.
	Warehouse warehouse.Config
	// Router serves model completions.
	Router *llm.Router
	// Recorder persists audit events. Analytics read from its store.
	Recorder *audit.Recorder
	// MaxRows caps execute-sql results. Zero means DefaultMaxRows.
	MaxRows int
	// ReadOnly rejects anything but a single read-only statement.
	ReadOnly bool
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Service runs QueryForge operations.
type Service struct {
	whCfg    warehouse.Config
	wh       warehouse.Warehouse
	whMu     sync.Mutex
	router   *llm.Router
	recorder *audit.Recorder
	maxRows  int
	readOnly bool
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a service. The warehouse is connected on first use.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	router := cfg.Router
	if router == nil {
		router = llm.NewRouter(llm.NewCatalog(nil, logger))
	}
	whCfg := cfg.Warehouse
	whCfg.ReadOnly = whCfg.ReadOnly || cfg.ReadOnly
	return &Service{
		whCfg:    whCfg,
		router:   router,
		recorder: cfg.Recorder,
		maxRows:  maxRows,
		readOnly: cfg.ReadOnly,
		logger:   logger,
		now:      time.Now,
	}
}

// WithWarehouse installs an already connected warehouse.
func (s *Service) WithWarehouse(w warehouse.Warehouse) *Service {
	s.whMu.Lock()
	defer s.whMu.Unlock()
	s.wh = warehouse.NewCollapsing(w)
	if s.whCfg.Type == "" {
		s.whCfg.Type = w.Info().Type
	}
	return s
}

// Router returns the LLM router.
func (s *Service) Router() *llm.Router {
	return s.router
}

// WarehouseConfigured returns nil when the warehouse has enough settings to connect.
func WarehouseConfigured(cfg warehouse.Config) error {
	switch cfg.Type {
	case "":
		return fmt.Errorf("%w: no warehouse type set", ErrWarehouseNotConfigured)
	case "databricks":
		var missing []string
		if cfg.Host == "" {
			missing = append(missing, "DATABRICKS_HOST")
		}
		if cfg.Token == "" {
			missing = append(missing, "DATABRICKS_TOKEN")
		}
		if cfg.HTTPPath == "" {
			missing = append(missing, "DATABRICKS_HTTP_PATH")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: set %s", ErrWarehouseNotConfigured, strings.Join(missing, ", "))
		}
	}
	return nil
}

// ensureWarehouse lazily connects to the warehouse. A failed connect is retried on the next call.
func (s *Service) ensureWarehouse(ctx context.Context) (warehouse.Warehouse, error) {
	s.whMu.Lock()
	defer s.whMu.Unlock()

	if s.wh != nil {
		return s.wh, nil
	}
	if err := WarehouseConfigured(s.whCfg); err != nil {
		return nil, err
	}

	s.logger.Debug("connecting to warehouse", "type", s.whCfg.Type)

	w, err := warehouse.New(s.whCfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse adapter: %w", err)
	}
	if err := w.Connect(ctx, s.whCfg); err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	s.wh = warehouse.NewCollapsing(w)
	s.logger.Info("warehouse connected", "type", s.whCfg.Type)
	return s.wh, nil
}

// Close releases the warehouse connection.
func (s *Service) Close() error {
	s.whMu.Lock()
	defer s.whMu.Unlock()
	if s.wh == nil {
		return nil
	}
	err := s.wh.Close()
	s.wh = nil
	return err
}

// Attribution ties an operation to a browser and a query session.
type Attribution struct {
	UserID    string
	SessionID string
	// StartsSession records a query_session_start event before the operation's own event.
	StartsSession bool
}

// record stamps attribution on e and writes it.
func (s *Service) record(ctx context.Context, attr Attribution, e *core.AuditEvent) {
	e.UserID = attr.UserID
	e.SessionID = attr.SessionID
	s.recorder.Record(ctx, e)
}

// startSession records the query_session_start event when attr asks for one.
func (s *Service) startSession(ctx context.Context, attr Attribution, table core.TableSelection, metadata map[string]string) {
	if !attr.StartsSession {
		return
	}
	e := &core.AuditEvent{
		EventType: core.EventQuerySessionStart,
		Columns:   table.Columns,
		Status:    core.StatusSuccess,
		Metadata:  metadata,
	}
	e.SetTable(table.TableRef)
	s.record(ctx, attr, e)
}

func (s *Service) elapsedMS(start time.Time) *int64 {
	return core.Int64(s.now().Sub(start).Milliseconds())
}
