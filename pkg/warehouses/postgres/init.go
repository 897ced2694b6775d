// Package postgres provides a PostgreSQL warehouse adapter for QueryForge.
//
// This file registers the PostgreSQL adapter with the warehouse registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/queryforge/pkg/warehouses/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

func init() {
	warehouse.Register("postgres", func(logger *slog.Logger) warehouse.Warehouse { return New(logger) })
}
