// Package warehouse provides the SQL warehouse contract used by QueryForge
// for schema introspection and query execution.
//
// Concrete implementations live in pkg/warehouses/ subdirectories and
// register themselves with the registry in their init() functions.
package warehouse

import (
	"context"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// Warehouse defines the interface that all warehouse adapters must implement.
type Warehouse interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Ping verifies the warehouse is reachable.
	Ping(ctx context.Context) error

	// ListCatalogs returns the top level namespaces.
	ListCatalogs(ctx context.Context) ([]string, error)

	// ListSchemas returns the schemas in a catalog.
	ListSchemas(ctx context.Context, catalog string) ([]string, error)

	// ListTables returns the tables in catalog.schema.
	ListTables(ctx context.Context, catalog, schema string) ([]string, error)

	// DescribeTable returns the columns of a table in declaration order.
	DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error)

	// Query runs a statement and returns at most maxRows rows.
	// maxRows <= 0 returns every row.
	Query(ctx context.Context, sql string, maxRows int) (*Result, error)

	// Info describes the configured warehouse for status reporting.
	Info() Info
}

// Config holds configuration for connecting to a warehouse.
type Config struct {
	Type     string
	Name     string
	Host     string
	Port     int
	HTTPPath string
	Token    string
	Database string
	Username string
	Password string
	Path     string
	Catalog  string
	Schema   string
	Options  map[string]string

	// ReadOnly asks adapters that support it to run queries in a
	// read-only transaction.
	ReadOnly bool

	// Params holds adapter-specific structured settings.
	// Each adapter decodes the keys it understands.
	Params map[string]any
}

// Info identifies a warehouse for the status endpoint.
type Info struct {
	ID       string
	Name     string
	Type     string
	HTTPPath string
}

// Result is a materialised query result.
type Result struct {
	Columns   []string
	Rows      []map[string]any
	Truncated bool
}
