// Package databricks provides a Databricks SQL warehouse adapter for QueryForge.
package databricks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	dbsql "github.com/databricks/databricks-sql-go"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

const defaultWarehouseName = "sql-warehouse"

// Adapter implements the warehouse.Warehouse interface for Databricks SQL warehouses.
type Adapter struct {
	warehouse.BaseSQLWarehouse
}

// New creates a new Databricks adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLWarehouse: warehouse.BaseSQLWarehouse{Logger: logger},
	}
}

// Connect opens a connector against the SQL warehouse behind cfg.HTTPPath.
// No session is opened until the first query, so a stopped warehouse is not woken here.
func (a *Adapter) Connect(_ context.Context, cfg warehouse.Config) error {
	host := Hostname(cfg.Host)
	if host == "" || cfg.HTTPPath == "" || cfg.Token == "" {
		return fmt.Errorf("databricks requires host, http_path and token")
	}

	opts := []dbsql.ConnOption{
		dbsql.WithServerHostname(host),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.Token),
	}
	if cfg.Port != 0 {
		opts = append(opts, dbsql.WithPort(cfg.Port))
	}
	if cfg.Catalog != "" || cfg.Schema != "" {
		opts = append(opts, dbsql.WithInitialNamespace(cfg.Catalog, cfg.Schema))
	}

	connector, err := dbsql.NewConnector(opts...)
	if err != nil {
		return fmt.Errorf("failed to create databricks connector: %w", err)
	}

	a.Logger.Debug("connecting to databricks",
		slog.String("host", host),
		slog.Bool("token_configured", cfg.Token != ""))

	a.DB = sql.OpenDB(connector)
	a.Cfg = cfg
	return nil
}

// Info reports the warehouse id parsed from the HTTP path.
func (a *Adapter) Info() warehouse.Info {
	name := a.Cfg.Name
	if name == "" {
		name = defaultWarehouseName
	}
	return warehouse.Info{
		ID:       WarehouseID(a.Cfg.HTTPPath),
		Name:     name,
		Type:     "databricks",
		HTTPPath: a.Cfg.HTTPPath,
	}
}

// ListCatalogs runs SHOW CATALOGS.
func (a *Adapter) ListCatalogs(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SHOW CATALOGS", 0)
}

// ListSchemas runs SHOW SCHEMAS IN catalog.
func (a *Adapter) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	stmt := "SHOW SCHEMAS IN " + warehouse.QuoteBacktick(catalog)
	return a.QueryStrings(ctx, stmt, 0)
}

// ListTables runs SHOW TABLES IN catalog.schema. The table name is the second column.
func (a *Adapter) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	stmt := "SHOW TABLES IN " + warehouse.QualifyWith(warehouse.QuoteBacktick, catalog, schema)
	return a.QueryStrings(ctx, stmt, 1)
}

// DescribeTable runs DESCRIBE TABLE and keeps the column section of the output.
func (a *Adapter) DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	stmt := "DESCRIBE TABLE " + warehouse.QualifyWith(warehouse.QuoteBacktick, table.Catalog, table.Schema, table.Table)
	res, err := a.Query(ctx, stmt, 0)
	if err != nil {
		return nil, err
	}
	return parseDescribe(res), nil
}

// parseDescribe converts DESCRIBE output to columns. Databricks appends
// partitioning and detail sections after a blank row or a row starting with '#'.
func parseDescribe(res *warehouse.Result) []core.ColumnInfo {
	cols := []core.ColumnInfo{}
	if len(res.Columns) < 2 {
		return cols
	}

	nameCol, typeCol := res.Columns[0], res.Columns[1]
	commentCol := ""
	if len(res.Columns) > 2 {
		commentCol = res.Columns[2]
	}

	for _, row := range res.Rows {
		name := strings.TrimSpace(asString(row[nameCol]))
		if name == "" || strings.HasPrefix(name, "#") {
			break
		}
		col := core.ColumnInfo{Name: name, Type: asString(row[typeCol])}
		if commentCol != "" {
			if c := asString(row[commentCol]); c != "" {
				col.Comment = &c
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Hostname strips the scheme and trailing slash from a workspace URL.
func Hostname(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// WarehouseID returns the last segment of an HTTP path such as
// /sql/1.0/warehouses/abc123.
func WarehouseID(httpPath string) string {
	httpPath = strings.TrimRight(httpPath, "/")
	if httpPath == "" {
		return ""
	}
	parts := strings.Split(httpPath, "/")
	return parts[len(parts)-1]
}

// Ensure Adapter implements warehouse.Warehouse interface
var _ warehouse.Warehouse = (*Adapter)(nil)
