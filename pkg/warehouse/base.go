package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// BaseSQLWarehouse provides common database/sql functionality for warehouses.
// Embed this struct in concrete implementations to get standard
// Close, Ping, Query and Info implementations.
type BaseSQLWarehouse struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
	// ReadOnlyTx runs Query inside a read-only transaction when Cfg.ReadOnly
	// is set. Only drivers that honour sql.TxOptions.ReadOnly enable it.
	ReadOnlyTx bool
}

// Close closes the database connection.
func (b *BaseSQLWarehouse) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing warehouse connection", slog.String("type", b.Cfg.Type))
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (b *BaseSQLWarehouse) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("warehouse connection not established")
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping warehouse: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLWarehouse) IsConnected() bool {
	return b.DB != nil
}

// Info returns a generic description built from the config.
func (b *BaseSQLWarehouse) Info() Info {
	id := b.Cfg.Database
	if id == "" {
		id = b.Cfg.Path
	}
	name := b.Cfg.Name
	if name == "" {
		name = b.Cfg.Type
	}
	return Info{ID: id, Name: name, Type: b.Cfg.Type, HTTPPath: b.Cfg.HTTPPath}
}

// Query executes a statement and materialises up to maxRows rows.
func (b *BaseSQLWarehouse) Query(ctx context.Context, sqlStr string, maxRows int) (*Result, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	var q interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	} = b.DB
	if b.ReadOnlyTx && b.Cfg.ReadOnly {
		tx, err := b.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		q = tx
	}

	rows, err := q.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &Result{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) == maxRows {
			result.Truncated = true
			break
		}
		values, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return result, nil
}

// QueryStrings runs an introspection query and returns column idx of every row as text.
// Rows where that column is NULL are skipped.
func (b *BaseSQLWarehouse) QueryStrings(ctx context.Context, query string, idx int, args ...any) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run introspection query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read introspection columns: %w", err)
	}
	if idx >= len(cols) {
		return nil, fmt.Errorf("introspection query returned %d columns, need column %d", len(cols), idx)
	}

	out := []string{}
	for rows.Next() {
		values, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, err
		}
		if values[idx] == nil {
			continue
		}
		out = append(out, fmt.Sprint(values[idx]))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating introspection rows: %w", err)
	}
	return out, nil
}

// QueryColumns runs a query returning (name, type, comment) rows.
func (b *BaseSQLWarehouse) QueryColumns(ctx context.Context, query string, args ...any) ([]core.ColumnInfo, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := []core.ColumnInfo{}
	for rows.Next() {
		var col core.ColumnInfo
		var comment sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		if comment.Valid && comment.String != "" {
			c := comment.String
			col.Comment = &c
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}

// scanRow scans the current row into a slice, converting []byte to string.
func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}
