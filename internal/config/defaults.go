package config

import (
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultEnv          = "development"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultPort         = 8000
	DefaultStaticDir    = "static"
	DefaultPollInterval = 30 * time.Second
	DefaultMaxRows      = 100
	DefaultLLMTimeout   = 60 * time.Second
	DefaultMaxRetries   = 2
	DefaultAuditPath    = ".queryforge/audit.db"
)

func defaults() map[string]any {
	return map[string]any{
		"env":                  DefaultEnv,
		"debug":                false,
		"log_level":            DefaultLogLevel,
		"log_format":           DefaultLogFormat,
		"server.port":          DefaultPort,
		"server.static_dir":    DefaultStaticDir,
		"server.poll_interval": DefaultPollInterval.String(),
		"warehouse.max_rows":   DefaultMaxRows,
		"warehouse.read_only":  true,
		"llm.timeout":          DefaultLLMTimeout.String(),
		"llm.max_retries":      DefaultMaxRetries,
		"audit.path":           DefaultAuditPath,
	}
}

// ApplyWarehouseDefaults fills defaults that depend on the warehouse type.
func ApplyWarehouseDefaults(w *WarehouseConfig) {
	if w == nil {
		return
	}
	w.Type = strings.ToLower(strings.TrimSpace(w.Type))

	// Legacy deployments only set DATABRICKS_* variables.
	if w.Type == "" && w.Host != "" && w.HTTPPath != "" {
		w.Type = "databricks"
	}

	switch w.Type {
	case "postgres":
		if w.Port == 0 {
			w.Port = 5432
		}
	case "mysql":
		if w.Port == 0 {
			w.Port = 3306
		}
	case "databricks":
		if w.Port == 0 {
			w.Port = 443
		}
	}
}
