// Package postgres provides a PostgreSQL warehouse adapter for QueryForge.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

// Adapter implements the warehouse.Warehouse interface for PostgreSQL.
// A Postgres server exposes one catalog per connection: the connected database.
type Adapter struct {
	warehouse.BaseSQLWarehouse
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLWarehouse: warehouse.BaseSQLWarehouse{Logger: logger, ReadOnlyTx: true},
	}
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
// Extra Options are appended in key order.
func buildPostgresDSN(cfg warehouse.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	opts := map[string]string{"sslmode": "disable"}
	for k, v := range cfg.Options {
		opts[k] = v
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteValue(cfg.Password)))
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quoteValue(opts[k])))
	}

	return strings.Join(parts, " ")
}

// quoteValue single-quotes values containing spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ListCatalogs returns the connected database.
func (a *Adapter) ListCatalogs(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT current_database()", 0)
}

// ListSchemas returns user schemas, excluding pg_catalog and friends.
func (a *Adapter) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = $1
		  AND schema_name NOT IN ('pg_catalog', 'information_schema')
		  AND schema_name NOT LIKE 'pg_toast%'
		  AND schema_name NOT LIKE 'pg_temp%'
		ORDER BY schema_name`, 0, catalog)
}

// ListTables returns tables and views in catalog.schema.
func (a *Adapter) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	return a.QueryStrings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = $1 AND table_schema = $2
		ORDER BY table_name`, 0, catalog, schema)
}

// DescribeTable returns columns with comments from pg_description.
func (a *Adapter) DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	return a.QueryColumns(ctx, `
		SELECT c.column_name,
		       c.data_type,
		       col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position)
		FROM information_schema.columns c
		WHERE c.table_catalog = $1 AND c.table_schema = $2 AND c.table_name = $3
		ORDER BY c.ordinal_position`, table.Catalog, table.Schema, table.Table)
}

// Ensure Adapter implements warehouse.Warehouse interface
var _ warehouse.Warehouse = (*Adapter)(nil)
