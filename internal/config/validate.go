package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/queryforge/pkg/warehouse"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid.
// An empty warehouse type is allowed; the API reports it as not configured.
func (c *Config) Validate() error {
	if c.Warehouse.Type != "" && !warehouse.IsRegistered(c.Warehouse.Type) {
		return &warehouse.UnknownWarehouseError{
			Type:      c.Warehouse.Type,
			Available: warehouse.List(),
		}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !oneOf(c.LogLevel, logLevels) {
		return fmt.Errorf("log_level must be one of %s, got %q", strings.Join(logLevels, ", "), c.LogLevel)
	}
	if !oneOf(c.LogFormat, logFormats) {
		return fmt.Errorf("log_format must be one of %s, got %q", strings.Join(logFormats, ", "), c.LogFormat)
	}
	if strings.TrimSpace(c.Audit.Path) == "" {
		return fmt.Errorf("audit.path is required")
	}
	if c.Warehouse.MaxRows < 1 {
		return fmt.Errorf("warehouse.max_rows must be positive, got %d", c.Warehouse.MaxRows)
	}
	if c.Server.PollInterval < 0 {
		return fmt.Errorf("server.poll_interval must not be negative")
	}
	return nil
}

// LLMBaseURL returns the OpenAI-compatible endpoint. Databricks warehouses
// default to their workspace's model serving endpoints.
func (c *Config) LLMBaseURL() string {
	if c.LLM.BaseURL != "" {
		return strings.TrimRight(c.LLM.BaseURL, "/")
	}
	if c.Warehouse.Type == "databricks" && c.Warehouse.Host != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(c.Warehouse.Host, "https://"), "http://")
		return "https://" + strings.TrimRight(host, "/") + "/serving-endpoints"
	}
	return ""
}

// LLMToken returns the serving token, falling back to the warehouse token.
func (c *Config) LLMToken() string {
	if c.LLM.Token != "" {
		return c.LLM.Token
	}
	return c.Warehouse.Token
}

// DebugInfo reports which settings are present. It never includes secret values.
func (c *Config) DebugInfo() map[string]any {
	w := c.Warehouse
	return map[string]any{
		"env":                            c.Env,
		"warehouse_type":                 w.Type,
		"warehouse_host_configured":      w.Host != "",
		"warehouse_token_configured":     w.Token != "",
		"warehouse_http_path_configured": w.HTTPPath != "",
		"warehouse_catalog":              w.Catalog,
		"warehouse_schema":               w.Schema,
		"read_only":                      w.ReadOnly,
		"max_rows":                       w.MaxRows,
		"llm_base_url_configured":        c.LLMBaseURL() != "",
		"llm_token_configured":           c.LLMToken() != "",
		"gemini_configured":              c.LLM.GeminiAPIKey != "",
		"default_model":                  c.LLM.DefaultModel,
	}
}
