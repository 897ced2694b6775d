// Package config loads QueryForge configuration from defaults, a YAML file,
// environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

// Config holds all QueryForge configuration.
type Config struct {
	Env       string          `koanf:"env"`
	Debug     bool            `koanf:"debug"`
	LogLevel  string          `koanf:"log_level"`
	LogFormat string          `koanf:"log_format"`
	Server    ServerConfig    `koanf:"server"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	LLM       LLMConfig       `koanf:"llm"`
	Audit     AuditConfig     `koanf:"audit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int           `koanf:"port"`
	StaticDir     string        `koanf:"static_dir"`
	CORSOrigins   []string      `koanf:"cors_origins"`
	SessionSecret string        `koanf:"session_secret"`
	PollInterval  time.Duration `koanf:"poll_interval"`
}

// WarehouseConfig holds the SQL warehouse connection.
type WarehouseConfig struct {
	Type     string `koanf:"type"` // databricks, duckdb, postgres, mysql
	Name     string `koanf:"name"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	HTTPPath string `koanf:"http_path"`
	Token    string `koanf:"token"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Path     string `koanf:"path"`
	Catalog  string `koanf:"catalog"`
	Schema   string `koanf:"schema"`

	MaxRows  int  `koanf:"max_rows"`
	ReadOnly bool `koanf:"read_only"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// Adapter converts the connection settings for the warehouse registry.
func (w WarehouseConfig) Adapter() warehouse.Config {
	return warehouse.Config{
		Type:     w.Type,
		Name:     w.Name,
		Host:     w.Host,
		Port:     w.Port,
		HTTPPath: w.HTTPPath,
		Token:    w.Token,
		Database: w.Database,
		Username: w.Username,
		Password: w.Password,
		Path:     w.Path,
		Catalog:  w.Catalog,
		Schema:   w.Schema,
		Options:  w.Options,
		ReadOnly: w.ReadOnly,
		Params:   w.Params,
	}
}

// LLMConfig holds model provider settings.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible endpoint root. Empty derives
	// https://<warehouse.host>/serving-endpoints for Databricks.
	BaseURL      string        `koanf:"base_url"`
	Token        string        `koanf:"token"`
	GeminiAPIKey string        `koanf:"gemini_api_key"`
	DefaultModel string        `koanf:"default_model"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxRetries   int           `koanf:"max_retries"`
	ModelsFile   string        `koanf:"models_file"`
}

// AuditConfig holds the audit store location.
type AuditConfig struct {
	Path string `koanf:"path"`
}
