// Package main provides the QueryForge command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/queryforge/internal/cli"

	// Register warehouse adapters
	_ "github.com/leapstack-labs/queryforge/pkg/warehouses/databricks"
	_ "github.com/leapstack-labs/queryforge/pkg/warehouses/duckdb"
	_ "github.com/leapstack-labs/queryforge/pkg/warehouses/mysql"
	_ "github.com/leapstack-labs/queryforge/pkg/warehouses/postgres"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
