// Package databricks provides a Databricks SQL warehouse adapter for QueryForge.
//
// This file registers the adapter with the warehouse registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/queryforge/pkg/warehouses/databricks"
package databricks

import (
	"log/slog"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

func init() {
	warehouse.Register("databricks", func(logger *slog.Logger) warehouse.Warehouse { return New(logger) })
}
