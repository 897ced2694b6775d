package llm

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// Router dispatches requests to a provider client chosen by the catalog.
type Router struct {
	catalog      *Catalog
	providers    map[string]Client
	defaultModel string
}

// NewRouter creates a router over catalog. Register providers with Use.
func NewRouter(catalog *Catalog) *Router {
	return &Router{catalog: catalog, providers: map[string]Client{}, defaultModel: DefaultModelID}
}

// WithDefaultModel sets the model used when a request names none. Empty is ignored.
func (r *Router) WithDefaultModel(id string) *Router {
	if id != "" {
		r.defaultModel = id
	}
	return r
}

// DefaultModel returns the model used when a request names none.
func (r *Router) DefaultModel() string {
	return r.defaultModel
}

// Use enables a provider. A nil client is ignored.
func (r *Router) Use(provider string, client Client) *Router {
	if client != nil {
		r.providers[provider] = client
	}
	return r
}

// Enabled reports whether a provider has a client.
func (r *Router) Enabled(provider string) bool {
	_, ok := r.providers[provider]
	return ok
}

// Catalog returns the model catalog.
func (r *Router) Catalog() *Catalog {
	return r.catalog
}

// Models lists catalog models whose provider is enabled.
func (r *Router) Models() []core.ModelInfo {
	return r.catalog.List(r.Enabled)
}

// ProviderFor returns the provider that serves a model id.
// Models missing from the catalog are served by the OpenAI-compatible provider.
func (r *Router) ProviderFor(modelID string) string {
	if m, ok := r.catalog.Lookup(modelID); ok {
		return m.Provider
	}
	return core.ProviderOpenAI
}

// Complete routes req by model id. An empty model uses the default model.
func (r *Router) Complete(ctx context.Context, req Request) (*Completion, error) {
	if req.Model == "" {
		req.Model = r.defaultModel
	}
	provider := r.ProviderFor(req.Model)
	client, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("no %s client for model %s: %w", provider, req.Model, ErrNotConfigured)
	}
	return client.Complete(ctx, req)
}

var _ Client = (*Router)(nil)
