package ports

import (
	"context"

	"github.com/fragent/fragent/internal/domain"
)

// ComponentExecutor is the behavior bound to a component type. Business
// failures (missing config, unknown handler, collaborator HTTP errors) are
// returned as errors; the scheduler records them against the component and
// keeps independent branches running.
type ComponentExecutor interface {
	Execute(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc is a named plugin or data source handler. Handler names are
// an open set, unlike the closed component-type variant.
type HandlerFunc func(ctx context.Context, component *domain.Component, inputs, execCtx map[string]interface{}) (map[string]interface{}, error)

// ExecutorProvider resolves a component type to its executor.
type ExecutorProvider interface {
	ExecutorFor(componentType domain.ComponentType) (ComponentExecutor, bool)
}
