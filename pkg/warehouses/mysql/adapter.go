// Package mysql provides a MySQL warehouse adapter for QueryForge.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

// Adapter implements the warehouse.Warehouse interface for MySQL.
// MySQL reports a single catalog ("def"); databases surface as schemas.
type Adapter struct {
	warehouse.BaseSQLWarehouse
}

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLWarehouse: warehouse.BaseSQLWarehouse{Logger: logger, ReadOnlyTx: true},
	}
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", buildMySQLDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN formats a go-sql-driver DSN. Options become connection params.
func buildMySQLDSN(cfg warehouse.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// ListCatalogs returns the catalog names from information_schema.
func (a *Adapter) ListCatalogs(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT DISTINCT catalog_name
		FROM information_schema.schemata
		ORDER BY catalog_name`, 0)
}

// ListSchemas returns user databases, excluding system schemas.
func (a *Adapter) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = ?
		  AND schema_name NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
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

// DescribeTable returns the full column type (e.g. varchar(255)) and column comment.
func (a *Adapter) DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	return a.QueryColumns(ctx, `
		SELECT column_name, column_type, column_comment
		FROM information_schema.columns
		WHERE table_catalog = ? AND table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, table.Catalog, table.Schema, table.Table)
}

// Ensure Adapter implements warehouse.Warehouse interface
var _ warehouse.Warehouse = (*Adapter)(nil)
