// Package audit persists the QueryForge audit log: one row per LLM call,
// SQL execution and query-session start.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/queryforge/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const eventColumns = `log_id, timestamp, event_type, user_id, session_id, catalog, schema_name,
	table_name, columns, business_logic, generated_sql, model_id, execution_time_ms, row_count,
	status, error_message, metadata, prompt_tokens, completion_tokens, total_tokens,
	estimated_cost_usd, business_logic_length, generated_sql_length`

// SQLiteStore implements core.AuditStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a new SQLite audit store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create audit directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenAndMigrate opens path and applies migrations.
func OpenAndMigrate(path string) (*SQLiteStore, error) {
	s := NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts an event. Missing LogID and Timestamp are filled in,
// as are the business logic and SQL lengths.
func (s *SQLiteStore) Record(ctx context.Context, e *core.AuditEvent) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if e.EventType == "" {
		return fmt.Errorf("audit event has no event type")
	}

	if e.LogID == "" {
		e.LogID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	e.Timestamp = e.Timestamp.UTC()
	if e.Status == "" {
		e.Status = core.StatusSuccess
	}
	if e.BusinessLogic != "" && e.BusinessLogicLength == nil {
		e.BusinessLogicLength = core.Int64(int64(len(e.BusinessLogic)))
	}
	if e.GeneratedSQL != "" && e.GeneratedSQLLength == nil {
		e.GeneratedSQLLength = core.Int64(int64(len(e.GeneratedSQL)))
	}

	columns, err := marshalOptional(e.Columns, len(e.Columns) > 0)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	metadata, err := marshalOptional(e.Metadata, len(e.Metadata) > 0)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.LogID, e.Timestamp.Format(timeLayout), string(e.EventType),
		nullString(e.UserID), nullString(e.SessionID),
		nullString(e.Catalog), nullString(e.SchemaName), nullString(e.TableName),
		columns, nullString(e.BusinessLogic), nullString(e.GeneratedSQL), nullString(e.ModelID),
		e.ExecutionTimeMS, e.RowCount,
		string(e.Status), nullString(e.ErrorMessage), metadata,
		e.PromptTokens, e.CompletionTokens, e.TotalTokens,
		e.EstimatedCostUSD, e.BusinessLogicLength, e.GeneratedSQLLength,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// ListEvents returns events matching filter, ordered by timestamp.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter core.EventFilter) ([]core.AuditEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var (
		where []string
		args  []any
	)
	if len(filter.Types) > 0 {
		marks := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			marks[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "event_type IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := "SELECT " + eventColumns + " FROM audit_logs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Newest {
		query += " ORDER BY timestamp DESC, rowid DESC"
	} else {
		query += " ORDER BY timestamp ASC, rowid ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []core.AuditEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of stored events.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (core.AuditEvent, error) {
	var (
		e                     core.AuditEvent
		ts, eventType, status string
		userID, sessionID     sql.NullString
		catalog, schemaName   sql.NullString
		tableName, columns    sql.NullString
		businessLogic         sql.NullString
		generatedSQL, modelID sql.NullString
		errorMessage          sql.NullString
		metadata              sql.NullString
		execMS, rowCount      sql.NullInt64
		promptTok, complTok   sql.NullInt64
		totalTok, blLen       sql.NullInt64
		sqlLen                sql.NullInt64
		cost                  sql.NullFloat64
	)

	if err := rows.Scan(
		&e.LogID, &ts, &eventType, &userID, &sessionID, &catalog, &schemaName,
		&tableName, &columns, &businessLogic, &generatedSQL, &modelID, &execMS, &rowCount,
		&status, &errorMessage, &metadata, &promptTok, &complTok, &totalTok,
		&cost, &blLen, &sqlLen,
	); err != nil {
		return e, fmt.Errorf("failed to scan audit event: %w", err)
	}

	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return e, fmt.Errorf("invalid audit timestamp %q: %w", ts, err)
		}
	}
	e.Timestamp = t.UTC()
	e.EventType = core.EventType(eventType)
	e.Status = core.EventStatus(status)
	e.UserID = userID.String
	e.SessionID = sessionID.String
	e.Catalog = catalog.String
	e.SchemaName = schemaName.String
	e.TableName = tableName.String
	e.BusinessLogic = businessLogic.String
	e.GeneratedSQL = generatedSQL.String
	e.ModelID = modelID.String
	e.ErrorMessage = errorMessage.String

	if columns.Valid && columns.String != "" {
		if err := json.Unmarshal([]byte(columns.String), &e.Columns); err != nil {
			return e, fmt.Errorf("invalid columns for event %s: %w", e.LogID, err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
			return e, fmt.Errorf("invalid metadata for event %s: %w", e.LogID, err)
		}
	}

	e.ExecutionTimeMS = int64Ptr(execMS)
	e.RowCount = int64Ptr(rowCount)
	e.PromptTokens = int64Ptr(promptTok)
	e.CompletionTokens = int64Ptr(complTok)
	e.TotalTokens = int64Ptr(totalTok)
	e.BusinessLogicLength = int64Ptr(blLen)
	e.GeneratedSQLLength = int64Ptr(sqlLen)
	if cost.Valid {
		e.EstimatedCostUSD = core.Float64(cost.Float64)
	}
	return e, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return core.Int64(v.Int64)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalOptional(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// Ensure SQLiteStore implements core.AuditStore
var _ core.AuditStore = (*SQLiteStore)(nil)
