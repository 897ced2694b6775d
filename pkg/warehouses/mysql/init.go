// Package mysql provides a MySQL warehouse adapter for QueryForge.
//
// This file registers the MySQL adapter with the warehouse registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/queryforge/pkg/warehouses/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

func init() {
	warehouse.Register("mysql", func(logger *slog.Logger) warehouse.Warehouse { return New(logger) })
}
