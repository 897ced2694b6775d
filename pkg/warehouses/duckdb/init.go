// Package duckdb provides a DuckDB warehouse adapter for QueryForge.
//
// This file registers the DuckDB adapter with the warehouse registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/queryforge/pkg/warehouses/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

func init() {
	warehouse.Register("duckdb", func(logger *slog.Logger) warehouse.Warehouse { return New(logger) })
}
