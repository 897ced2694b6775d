package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes QueryForge environment variables.
// Nested keys use a double underscore: QUERYFORGE_WAREHOUSE__TOKEN.
const EnvPrefix = "QUERYFORGE_"

// Config file names searched in the working directory.
const (
	ConfigFileName    = "queryforge.yaml"
	ConfigFileNameAlt = "queryforge.yml"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"env":            "env",
	"debug":          "debug",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"port":           "server.port",
	"static-dir":     "server.static_dir",
	"session-secret": "server.session_secret",
	"warehouse":      "warehouse.type",
	"database":       "warehouse.database",
	"max-rows":       "warehouse.max_rows",
	"read-only":      "warehouse.read_only",
	"models-file":    "llm.models_file",
	"default-model":  "llm.default_model",
	"audit":          "audit.path",
}

// legacyEnv maps environment variables of earlier deployments to config keys.
var legacyEnv = map[string]string{
	"DATABRICKS_HOST":      "warehouse.host",
	"DATABRICKS_TOKEN":     "warehouse.token",
	"DATABRICKS_HTTP_PATH": "warehouse.http_path",
	"DATABRICKS_CATALOG":   "warehouse.catalog",
	"DATABRICKS_SCHEMA":    "warehouse.schema",
	"GEMINI_API_KEY":       "llm.gemini_api_key",
	"ENV":                  "env",
	"DEBUG":                "debug",
	"CORS_ORIGINS":         "server.cors_origins",
	"PORT":                 "server.port",
}

// Loaded is a decoded configuration and the file it came from.
type Loaded struct {
	*Config
	// File is the config file used, empty when none was found.
	File string
}

// findConfigFile finds the config file to use.
// Priority: explicit path > queryforge.yaml > queryforge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, environment variables and flags.
// Precedence (highest to lowest): flags > QUERYFORGE_ env > legacy env > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Legacy environment variables
	if err := k.Load(confmap.Provider(legacyValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load legacy env vars: %w", err)
	}

	// 4. QUERYFORGE_ environment variables
	// Transform: QUERYFORGE_WAREHOUSE__HTTP_PATH -> warehouse.http_path
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s, v string) (string, any) {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(v)
		}
		return key, v
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	ApplyWarehouseDefaults(&cfg.Warehouse)
	expandSecrets(&cfg)

	return &Loaded{Config: &cfg, File: used}, nil
}

func legacyValues() map[string]any {
	out := map[string]any{}
	for name, key := range legacyEnv {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		switch name {
		case "CORS_ORIGINS":
			out[key] = splitList(v)
		case "DEBUG":
			b, err := strconv.ParseBool(v)
			out[key] = err == nil && b
		default:
			out[key] = v
		}
	}
	return out
}

// listKeys are settings whose environment values are comma-separated lists.
var listKeys = map[string]bool{
	"server.cors_origins": true,
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSecrets expands environment variables in credential fields.
func expandSecrets(c *Config) {
	w := &c.Warehouse
	w.Host = expandEnvVars(w.Host)
	w.Token = expandEnvVars(w.Token)
	w.HTTPPath = expandEnvVars(w.HTTPPath)
	w.Username = expandEnvVars(w.Username)
	w.Password = expandEnvVars(w.Password)
	w.Database = expandEnvVars(w.Database)

	c.LLM.Token = expandEnvVars(c.LLM.Token)
	c.LLM.GeminiAPIKey = expandEnvVars(c.LLM.GeminiAPIKey)
	c.Server.SessionSecret = expandEnvVars(c.Server.SessionSecret)
}
