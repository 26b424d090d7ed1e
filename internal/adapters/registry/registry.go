package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/fragent/fragent/internal/domain"
	"github.com/fragent/fragent/internal/ports"
)

// Registry binds component types to their executors and holds the open,
// string-keyed handler registries for plugins and data sources. It is
// constructed once and passed by reference into the engine; there is no
// package-level mutable state.
type Registry struct {
	executors map[domain.ComponentType]ports.ComponentExecutor

	plugins map[string]ports.HandlerFunc
	sources map[string]ports.HandlerFunc
	mu      sync.RWMutex

	logger *slog.Logger
}

// Deps are the collaborator clients the built-in executors depend on.
type Deps struct {
	Agents ports.AgentClient
	LLM    ports.CompletionClient
	// AgentServiceURL is the fallback agent service base URL when the
	// execution context carries none.
	AgentServiceURL string
}

func New(deps Deps, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		executors: make(map[domain.ComponentType]ports.ComponentExecutor),
		plugins:   make(map[string]ports.HandlerFunc),
		sources:   make(map[string]ports.HandlerFunc),
		logger:    logger.With("component", "registry"),
	}

	r.executors[domain.ComponentTypeInput] = passthroughExecutor{}
	r.executors[domain.ComponentTypeOutput] = passthroughExecutor{}
	r.executors[domain.ComponentTypeAgent] = &AgentExecutor{
		agents:     deps.Agents,
		llm:        deps.LLM,
		serviceURL: deps.AgentServiceURL,
		logger:     logger.With("component", "agent_executor"),
	}
	r.executors[domain.ComponentTypePlugin] = &PluginExecutor{registry: r}
	r.executors[domain.ComponentTypeDataSource] = &DataSourceExecutor{registry: r}

	r.RegisterPlugin("web_search", webSearchHandler)
	r.RegisterDataSource("document", documentHandler)

	return r
}

func (r *Registry) ExecutorFor(componentType domain.ComponentType) (ports.ComponentExecutor, bool) {
	executor, ok := r.executors[componentType]
	return executor, ok
}

func (r *Registry) RegisterPlugin(name string, handler ports.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[name] = handler
	r.logger.Debug("plugin handler registered", "plugin_type", name)
}

func (r *Registry) Plugin(name string) (ports.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.plugins[name]
	return handler, ok
}

func (r *Registry) RegisterDataSource(name string, handler ports.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = handler
	r.logger.Debug("data source handler registered", "source_type", name)
}

func (r *Registry) DataSource(name string) (ports.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.sources[name]
	return handler, ok
}

func (r *Registry) ListPlugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListDataSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
