package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"gopkg.in/yaml.v3"
)

// DefaultModelID is used when a request names no model.
const DefaultModelID = "databricks-llama-4-maverick"

// DefaultModels returns the built-in model catalog.
func DefaultModels() []core.ModelInfo {
	return []core.ModelInfo{
		{Key: "llama-maverick", ID: "databricks-llama-4-maverick", Name: "Llama 4 Maverick", Description: "Fast and efficient for general tasks", Provider: core.ProviderOpenAI, InputPricePerM: 0.15, OutputPricePerM: 0.60},
		{Key: "llama-70b", ID: "databricks-meta-llama-3-3-70b-instruct", Name: "Llama 3.3 70B", Description: "Powerful model for complex reasoning", Provider: core.ProviderOpenAI},
		{Key: "llama-405b", ID: "databricks-meta-llama-3-1-405b-instruct", Name: "Llama 3.1 405B", Description: "Largest Llama model for most complex tasks", Provider: core.ProviderOpenAI},
		{Key: "claude-sonnet-4-5", ID: "databricks-claude-sonnet-4-5", Name: "Claude Sonnet 4.5", Description: "Latest Claude model with superior reasoning", Provider: core.ProviderOpenAI},
		{Key: "claude-opus-4-1", ID: "databricks-claude-opus-4-1", Name: "Claude Opus 4.1", Description: "Most powerful Claude model", Provider: core.ProviderOpenAI},
		{Key: "gpt-5", ID: "databricks-gpt-5", Name: "GPT-5", Description: "Latest OpenAI model", Provider: core.ProviderOpenAI},
		{Key: "gemini-2-5-pro", ID: "databricks-gemini-2-5-pro", Name: "Gemini 2.5 Pro", Description: "Google's most capable model", Provider: core.ProviderOpenAI},
		{Key: "qwen3-80b", ID: "databricks-qwen3-next-80b-a3b-instruct", Name: "Qwen 3 80B", Description: "Advanced Qwen model", Provider: core.ProviderOpenAI},
		{Key: "gpt-oss-120b", ID: "databricks-gpt-oss-120b", Name: "GPT OSS 120B", Description: "Open source GPT-scale model", Provider: core.ProviderOpenAI},
		{Key: "gemini-2-5-flash", ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Direct Gemini API, low latency", Provider: core.ProviderGemini, InputPricePerM: 0.30, OutputPricePerM: 2.50},
	}
}

// modelsFile is the on-disk shape of llm.models_file.
type modelsFile struct {
	Models []core.ModelInfo `yaml:"models"`
}

// Catalog is the ordered, concurrency-safe list of selectable models.
type Catalog struct {
	mu     sync.RWMutex
	models []core.ModelInfo
	byID   map[string]core.ModelInfo
	logger *slog.Logger
}

// NewCatalog creates a catalog holding models. Nil or empty means DefaultModels.
func NewCatalog(models []core.ModelInfo, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(models) == 0 {
		models = DefaultModels()
	}
	c := &Catalog{logger: logger}
	c.set(models)
	return c
}

func (c *Catalog) set(in []core.ModelInfo) {
	models := make([]core.ModelInfo, len(in))
	copy(models, in)
	byID := make(map[string]core.ModelInfo, len(models))
	for i := range models {
		if models[i].Provider == "" {
			models[i].Provider = core.ProviderOpenAI
		}
		byID[models[i].ID] = models[i]
	}
	c.mu.Lock()
	c.models = models
	c.byID = byID
	c.mu.Unlock()
}

// All returns every model in catalog order.
func (c *Catalog) All() []core.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// List returns the models whose provider passes enabled, in catalog order.
func (c *Catalog) List(enabled func(provider string) bool) []core.ModelInfo {
	all := c.All()
	out := make([]core.ModelInfo, 0, len(all))
	for _, m := range all {
		if enabled == nil || enabled(m.Provider) {
			out = append(out, m)
		}
	}
	return out
}

// Lookup finds a model by endpoint id.
func (c *Catalog) Lookup(id string) (core.ModelInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// LoadFile replaces the catalog with the models listed in a YAML file.
func (c *Catalog) LoadFile(path string) error {
	models, err := ReadModelsFile(path)
	if err != nil {
		return err
	}
	c.set(models)
	c.logger.Info("model catalog loaded", slog.String("path", path), slog.Int("models", len(models)))
	return nil
}

// ReadModelsFile parses a models YAML file.
func ReadModelsFile(path string) ([]core.ModelInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}

	var f modelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse models file %s: %w", path, err)
	}
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("models file %s lists no models", path)
	}

	seen := make(map[string]bool, len(f.Models))
	for i, m := range f.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("models file %s: entry %d has no id", path, i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("models file %s: duplicate id %q", path, m.ID)
		}
		seen[m.ID] = true
		if m.Name == "" {
			f.Models[i].Name = m.ID
		}
		switch m.Provider {
		case "", core.ProviderOpenAI, core.ProviderGemini:
		default:
			return nil, fmt.Errorf("models file %s: model %q has unknown provider %q", path, m.ID, m.Provider)
		}
	}
	return f.Models, nil
}

// Watch reloads path whenever it changes until ctx is done.
// The parent directory is watched so editor rename-on-save is seen.
// A file that fails to parse leaves the previous catalog in place.
func (c *Catalog) Watch(ctx context.Context, path string, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve models file: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				if err := c.LoadFile(abs); err != nil {
					c.logger.Error("model catalog reload failed", slog.String("error", err.Error()))
					return
				}
				if onReload != nil {
					onReload()
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}
