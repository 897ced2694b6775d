// Package duckdb provides a DuckDB warehouse adapter for QueryForge.
//
// It serves local development and demos: point warehouse.path at a
// .duckdb file, or leave it empty for an in-memory database.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the warehouse.Warehouse interface for DuckDB.
type Adapter struct {
	warehouse.BaseSQLWarehouse
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLWarehouse: warehouse.BaseSQLWarehouse{Logger: logger},
	}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" or an empty path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	cfg.Path = path

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}

	a.Logger.Debug("connected to duckdb", slog.String("path", path))
	return nil
}

func (a *Adapter) applyParams(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		for _, stmt := range []string{"INSTALL " + ext, "LOAD " + ext} {
			if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to load extension %s: %w", ext, err)
			}
		}
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmt := fmt.Sprintf("SET %s = '%s'", k, p.Settings[k])
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}

	for i, stmt := range p.InitSQL {
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run init_sql[%d]: %w", i, err)
		}
	}
	return nil
}

// ListCatalogs returns attached databases, excluding DuckDB internals.
func (a *Adapter) ListCatalogs(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT DISTINCT catalog_name
		FROM information_schema.schemata
		WHERE catalog_name NOT IN ('system', 'temp')
		ORDER BY catalog_name`, 0)
}

// ListSchemas returns the schemas of an attached database.
func (a *Adapter) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = ?
		ORDER BY schema_name`, 0, catalog)
}

// ListTables returns tables and views in catalog.schema.
func (a *Adapter) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = ? AND table_schema = ?
		ORDER BY table_name`, 0, catalog, schema)
}

// DescribeTable returns column names, types and comments via duckdb_columns().
func (a *Adapter) DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	return a.QueryColumns(ctx, `
		SELECT column_name, data_type, comment
		FROM duckdb_columns()
		WHERE database_name = ? AND schema_name = ? AND table_name = ?
		ORDER BY column_index`, table.Catalog, table.Schema, table.Table)
}

// Ensure Adapter implements warehouse.Warehouse interface
var _ warehouse.Warehouse = (*Adapter)(nil)
