package warehouse

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Factory builds an unconnected warehouse adapter.
type Factory func(*slog.Logger) Warehouse

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a warehouse factory to the registry.
// Called by implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Get retrieves a warehouse factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// New creates a new warehouse instance based on config type.
// The logger is passed to the constructor (nil uses a discard logger).
func New(cfg Config, logger *slog.Logger) (Warehouse, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("warehouse type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownWarehouseError{
			Type:      cfg.Type,
			Available: List(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// List returns all registered warehouse names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a warehouse type is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownWarehouseError is returned when an unknown warehouse type is requested.
type UnknownWarehouseError struct {
	Type      string
	Available []string
}

func (e *UnknownWarehouseError) Error() string {
	return fmt.Sprintf("unknown warehouse type %q\nAvailable warehouses: %v\nHint: Check warehouse.type in queryforge.yaml", e.Type, e.Available)
}
